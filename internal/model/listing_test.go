package model

import "testing"

func TestListingTypeTag(t *testing.T) {
	tests := []struct {
		name    string
		listing Listing
		want    ListingType
	}{
		{"none set", Listing{}, ListingTypeStandard},
		{"vip", Listing{VIP: true}, ListingTypeVIP},
		{"loge", Listing{Loge: true}, ListingTypeLoge},
		{"suite", Listing{Suite: true}, ListingTypeSuite},
		{"suite wins over vip", Listing{VIP: true, Suite: true}, ListingTypeSuite},
		{"loge wins over vip", Listing{VIP: true, Loge: true}, ListingTypeLoge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.listing.TypeTag(); got != tt.want {
				t.Fatalf("got=%s want=%s", got, tt.want)
			}
		})
	}
}
