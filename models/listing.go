package models

import "time"

// ListingFeatures is one already-encoded listing as accepted by the prediction API.
// Fields are pointers so that an absent field is distinguishable from a zero value.
type ListingFeatures struct {
	HostSince             *float64 `json:"host_since" validate:"required,gte=1900,lte=2100"`
	HostResponseTime      *float64 `json:"host_response_time" validate:"required,gte=0,lte=4"`
	HostResponseRate      *float64 `json:"host_response_rate" validate:"required,gte=0,lte=100"`
	HostIsSuperhost       *float64 `json:"host_is_superhost" validate:"required,gte=0,lte=1"`
	HostListingsCount     *float64 `json:"host_listings_count" validate:"required,gte=0"`
	HostHasProfilePic     *float64 `json:"host_has_profile_pic" validate:"required,gte=0,lte=1"`
	HostIdentityVerified  *float64 `json:"host_identity_verified" validate:"required,gte=0,lte=1"`
	NeighbourhoodCleansed *float64 `json:"neighbourhood_cleansed" validate:"required,gte=0"`
	Latitude              *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude             *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	RoomType              *float64 `json:"room_type" validate:"required,gte=0,lte=3"`
	Accommodates          *float64 `json:"accommodates" validate:"required,gte=0"`
	Bathrooms             *float64 `json:"bathrooms" validate:"required,gte=0"`
	Amenities             *float64 `json:"amenities" validate:"required,gte=0"`
	SharedBath            *float64 `json:"shared_bath" validate:"required,gte=0,lte=1"`
	MinimumNights         *float64 `json:"minimum_nights" validate:"required,gte=0"`
	MaximumNights         *float64 `json:"maximum_nights" validate:"required,gte=0"`
	HasAvailability       *float64 `json:"has_availability" validate:"required,gte=0,lte=1"`
	Availability30        *float64 `json:"availability_30" validate:"required,gte=0,lte=30"`
	Availability60        *float64 `json:"availability_60" validate:"required,gte=0,lte=60"`
	Availability90        *float64 `json:"availability_90" validate:"required,gte=0,lte=90"`
	Availability365       *float64 `json:"availability_365" validate:"required,gte=0,lte=365"`
	NumberOfReviews       *float64 `json:"number_of_reviews" validate:"required,gte=0"`
	NumberOfReviewsLTM    *float64 `json:"number_of_reviews_ltm" validate:"required,gte=0"`
	NumberOfReviewsL30D   *float64 `json:"number_of_reviews_l30d" validate:"required,gte=0"`
	InstantBookable       *float64 `json:"instant_bookable" validate:"required,gte=0,lte=1"`
	ReviewsPerMonth       *float64 `json:"reviews_per_month" validate:"required,gte=0"`
}

// Vector returns the features in FeatureColumns order. Call it only on a validated
// record; a nil field is reported as ok=false.
func (l *ListingFeatures) Vector() ([]float64, bool) {
	fields := []*float64{
		l.HostSince,
		l.HostResponseTime,
		l.HostResponseRate,
		l.HostIsSuperhost,
		l.HostListingsCount,
		l.HostHasProfilePic,
		l.HostIdentityVerified,
		l.NeighbourhoodCleansed,
		l.Latitude,
		l.Longitude,
		l.RoomType,
		l.Accommodates,
		l.Bathrooms,
		l.Amenities,
		l.SharedBath,
		l.MinimumNights,
		l.MaximumNights,
		l.HasAvailability,
		l.Availability30,
		l.Availability60,
		l.Availability90,
		l.Availability365,
		l.NumberOfReviews,
		l.NumberOfReviewsLTM,
		l.NumberOfReviewsL30D,
		l.InstantBookable,
		l.ReviewsPerMonth,
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		if f == nil {
			return nil, false
		}
		out[i] = *f
	}
	return out, true
}

// ListingArray is the positional form of a prediction request, in FeatureColumns order.
type ListingArray struct {
	Data []float64 `json:"data" validate:"required"`
}

// Prediction is the response of both prediction endpoints.
type Prediction struct {
	Prediction float64 `json:"prediction"`
}

// DatasetSummary holds the computed statistics over one encoded dataset.
type DatasetSummary struct {
	Source            string
	RawRows           int
	EncodedRows       int
	DroppedRows       int
	Features          int
	AverageTarget     float64
	MinTarget         float64
	MaxTarget         float64
	RoomTypes         map[string]int
	TopNeighbourhoods []NeighbourhoodCount
}

// NeighbourhoodCount pairs a neighbourhood with its listing count.
type NeighbourhoodCount struct {
	Name  string
	Count int
}

// FrequencySnapshot is a neighbourhood frequency table frozen at preparation time.
type FrequencySnapshot struct {
	Column    string         `json:"column"`
	Sources   []string       `json:"sources"`
	CreatedAt time.Time      `json:"created_at"`
	Counts    map[string]int `json:"counts"`
}
