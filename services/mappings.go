package services

import "airbnb-pricer/models"

// DeniedColumns are removed by PruneColumns: identifiers, free text, weakly
// correlated numeric fields and redundant host aggregates.
var DeniedColumns = []string{
	"id", "listing_url", "scrape_id", "last_scraped", "name", "description",
	"neighborhood_overview", "picture_url", "host_id", "host_url", "host_name",
	"host_location", "host_about", "host_acceptance_rate", "host_thumbnail_url",
	"host_picture_url", "host_neighbourhood", "host_total_listings_count",
	"host_verifications", "neighbourhood", "neighbourhood_group_cleansed",
	"property_type", "bedrooms", "beds", "minimum_minimum_nights",
	"maximum_minimum_nights", "minimum_maximum_nights", "maximum_maximum_nights",
	"minimum_nights_avg_ntm", "maximum_nights_avg_ntm", "calendar_updated",
	"calendar_last_scraped", "first_review", "last_review", "license",
	"calculated_host_listings_count", "calculated_host_listings_count_entire_homes",
	"calculated_host_listings_count_private_rooms", "calculated_host_listings_count_shared_rooms",
}

// MissingDefault is the sentinel written into a null cell of Column.
type MissingDefault struct {
	Column string
	Value  string
}

// MissingDefaults lists the normalised columns in the order they are filled.
// The sentinels read as "zero quantity" to the parsers that run afterwards.
var MissingDefaults = []MissingDefault{
	{Column: models.ColBathroomsText, Value: "0 baths"},
	{Column: models.ColReviewsPerMonth, Value: "0"},
	{Column: models.ColHostResponseTime, Value: "0"},
	{Column: models.ColHostResponseRate, Value: "0%"},
}

// RoomTypeMap orders room types by how much of the property the guest gets.
var RoomTypeMap = map[string]float64{
	"Entire home/apt": 3,
	"Private room":    2,
	"Hotel room":      1,
	"Shared room":     0,
}

// ResponseTimeMap orders host response times; "0" is the missing-value sentinel.
var ResponseTimeMap = map[string]float64{
	"within an hour":     4,
	"within a few hours": 3,
	"within a day":       2,
	"a few days or more": 1,
	"0":                  0,
}

// BooleanMap decodes the t/f letters used by boolean listing fields.
var BooleanMap = map[string]float64{
	"t": 1,
	"f": 0,
}

// BooleanColumns are encoded with BooleanMap, in this order.
var BooleanColumns = []string{
	models.ColInstantBookable,
	models.ColHasAvailability,
	models.ColHostIsSuperhost,
	models.ColHostHasProfilePic,
	models.ColHostIdentityVerified,
}
