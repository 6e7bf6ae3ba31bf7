package models

// Raw column names the pipeline reads or rewrites.
const (
	ColHostSince             = "host_since"
	ColHostResponseTime      = "host_response_time"
	ColHostResponseRate      = "host_response_rate"
	ColHostIsSuperhost       = "host_is_superhost"
	ColHostListingsCount     = "host_listings_count"
	ColHostHasProfilePic     = "host_has_profile_pic"
	ColHostIdentityVerified  = "host_identity_verified"
	ColNeighbourhoodCleansed = "neighbourhood_cleansed"
	ColLatitude              = "latitude"
	ColLongitude             = "longitude"
	ColRoomType              = "room_type"
	ColAccommodates          = "accommodates"
	ColBathrooms             = "bathrooms"
	ColBathroomsText         = "bathrooms_text"
	ColAmenities             = "amenities"
	ColPrice                 = "price"
	ColMinimumNights         = "minimum_nights"
	ColMaximumNights         = "maximum_nights"
	ColHasAvailability       = "has_availability"
	ColAvailability30        = "availability_30"
	ColAvailability60        = "availability_60"
	ColAvailability90        = "availability_90"
	ColAvailability365       = "availability_365"
	ColNumberOfReviews       = "number_of_reviews"
	ColNumberOfReviewsLTM    = "number_of_reviews_ltm"
	ColNumberOfReviewsL30D   = "number_of_reviews_l30d"
	ColInstantBookable       = "instant_bookable"
	ColReviewsPerMonth       = "reviews_per_month"

	// ColSharedBath is derived from bathrooms_text.
	ColSharedBath = "shared_bath"
	// TargetColumn holds the cleaned nightly price and is always last.
	TargetColumn = "target"
)

// RawColumns is the documented Inside Airbnb listings layout the pipeline consumes.
var RawColumns = []string{
	"id", "listing_url", "scrape_id", "last_scraped", "name", "description",
	"neighborhood_overview", "picture_url", "host_id", "host_url", "host_name",
	ColHostSince, "host_location", "host_about", ColHostResponseTime, ColHostResponseRate,
	"host_acceptance_rate", ColHostIsSuperhost, "host_thumbnail_url", "host_picture_url",
	"host_neighbourhood", ColHostListingsCount, "host_total_listings_count",
	"host_verifications", ColHostHasProfilePic, ColHostIdentityVerified, "neighbourhood",
	ColNeighbourhoodCleansed, "neighbourhood_group_cleansed", ColLatitude, ColLongitude,
	"property_type", ColRoomType, ColAccommodates, ColBathrooms, ColBathroomsText, "bedrooms",
	"beds", ColAmenities, ColPrice, ColMinimumNights, ColMaximumNights,
	"minimum_minimum_nights", "maximum_minimum_nights", "minimum_maximum_nights",
	"maximum_maximum_nights", "minimum_nights_avg_ntm", "maximum_nights_avg_ntm",
	"calendar_updated", ColHasAvailability, ColAvailability30, ColAvailability60,
	ColAvailability90, ColAvailability365, "calendar_last_scraped", ColNumberOfReviews,
	ColNumberOfReviewsLTM, ColNumberOfReviewsL30D, "first_review", "last_review", "license",
	ColInstantBookable, "calculated_host_listings_count",
	"calculated_host_listings_count_entire_homes", "calculated_host_listings_count_private_rooms",
	"calculated_host_listings_count_shared_rooms", ColReviewsPerMonth,
}

// FeatureColumns is the encoded feature order produced by the pipeline for RawColumns
// input, excluding the trailing target. Models are trained and served in this order.
var FeatureColumns = []string{
	ColHostSince,
	ColHostResponseTime,
	ColHostResponseRate,
	ColHostIsSuperhost,
	ColHostListingsCount,
	ColHostHasProfilePic,
	ColHostIdentityVerified,
	ColNeighbourhoodCleansed,
	ColLatitude,
	ColLongitude,
	ColRoomType,
	ColAccommodates,
	ColBathrooms,
	ColAmenities,
	ColSharedBath,
	ColMinimumNights,
	ColMaximumNights,
	ColHasAvailability,
	ColAvailability30,
	ColAvailability60,
	ColAvailability90,
	ColAvailability365,
	ColNumberOfReviews,
	ColNumberOfReviewsLTM,
	ColNumberOfReviewsL30D,
	ColInstantBookable,
	ColReviewsPerMonth,
}

// EncodedColumns returns FeatureColumns followed by the target column.
func EncodedColumns() []string {
	out := make([]string, 0, len(FeatureColumns)+1)
	out = append(out, FeatureColumns...)
	return append(out, TargetColumn)
}
