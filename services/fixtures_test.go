package services

import (
	"io"
	"testing"

	"airbnb-pricer/dataset"
	"airbnb-pricer/models"
	"airbnb-pricer/utils"
)

func newTestLogger() *utils.Logger { return utils.NewTestLogger(io.Discard) }

// baseListing is a complete, valid raw listing. Empty strings read as null.
var baseListing = map[string]string{
	"id":                          "1",
	"listing_url":                 "https://www.airbnb.com/rooms/1",
	"scrape_id":                   "20230925",
	"last_scraped":                "2023-09-25",
	"name":                        "Rental unit in Bangkok",
	"description":                 "Bright flat near the river",
	"neighborhood_overview":       "Quiet street",
	"picture_url":                 "https://a0.muscache.com/pictures/1.jpg",
	"host_id":                     "100",
	"host_url":                    "https://www.airbnb.com/users/show/100",
	"host_name":                   "Nok",
	"host_since":                  "2015-04-02",
	"host_location":               "Bangkok, Thailand",
	"host_about":                  "",
	"host_response_time":          "within an hour",
	"host_response_rate":          "87%",
	"host_acceptance_rate":        "90%",
	"host_is_superhost":           "t",
	"host_thumbnail_url":          "https://a0.muscache.com/im/users/100/small.jpg",
	"host_picture_url":            "https://a0.muscache.com/im/users/100/big.jpg",
	"host_neighbourhood":          "Silom",
	"host_listings_count":         "2",
	"host_total_listings_count":   "3",
	"host_verifications":          "['email', 'phone']",
	"host_has_profile_pic":        "t",
	"host_identity_verified":      "f",
	"neighbourhood":               "Bangkok, Thailand",
	"neighbourhood_cleansed":      "Bang Rak",
	"neighbourhood_group_cleansed": "",
	"latitude":                    "13.72",
	"longitude":                   "100.52",
	"property_type":               "Entire rental unit",
	"room_type":                   "Entire home/apt",
	"accommodates":                "4",
	"bathrooms":                   "",
	"bathrooms_text":              "1.5 baths",
	"bedrooms":                    "1",
	"beds":                        "2",
	"amenities":                   `["Wifi", "Kitchen", "Pool"]`,
	"price":                       "$1,234.50",
	"minimum_nights":              "2",
	"maximum_nights":              "30",
	"minimum_minimum_nights":      "2",
	"maximum_minimum_nights":      "2",
	"minimum_maximum_nights":      "30",
	"maximum_maximum_nights":      "30",
	"minimum_nights_avg_ntm":      "2.0",
	"maximum_nights_avg_ntm":      "30.0",
	"calendar_updated":            "",
	"has_availability":            "t",
	"availability_30":             "10",
	"availability_60":             "20",
	"availability_90":             "30",
	"availability_365":            "200",
	"calendar_last_scraped":       "2023-09-25",
	"number_of_reviews":           "12",
	"number_of_reviews_ltm":       "4",
	"number_of_reviews_l30d":      "1",
	"first_review":                "2016-01-10",
	"last_review":                 "2023-08-30",
	"license":                     "",
	"instant_bookable":            "f",
	"calculated_host_listings_count":               "2",
	"calculated_host_listings_count_entire_homes":  "2",
	"calculated_host_listings_count_private_rooms": "0",
	"calculated_host_listings_count_shared_rooms":  "0",
	"reviews_per_month":                            "0.5",
}

// listing returns baseListing with the given fields replaced.
func listing(overrides map[string]string) map[string]string {
	row := make(map[string]string, len(baseListing))
	for k, v := range baseListing {
		row[k] = v
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

// rawTable builds a raw listings table in models.RawColumns order.
func rawTable(t *testing.T, rows ...map[string]string) *dataset.Table {
	t.Helper()
	records := make([][]string, len(rows))
	for i, row := range rows {
		rec := make([]string, len(models.RawColumns))
		for j, name := range models.RawColumns {
			rec[j] = row[name]
		}
		records[i] = rec
	}
	tbl, err := dataset.FromRecords(models.RawColumns, records, nil)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return tbl
}

// cell returns a cell or fails the test.
func cell(t *testing.T, tbl *dataset.Table, row int, name string) dataset.Cell {
	t.Helper()
	c, err := tbl.Cell(row, name)
	if err != nil {
		t.Fatalf("Cell(%d, %q): %v", row, name, err)
	}
	return c
}

// surviving is the raw column order after pruning.
var surviving = []string{
	"host_since", "host_response_time", "host_response_rate", "host_is_superhost",
	"host_listings_count", "host_has_profile_pic", "host_identity_verified",
	"neighbourhood_cleansed", "latitude", "longitude", "room_type", "accommodates",
	"bathrooms", "bathrooms_text", "amenities", "price", "minimum_nights", "maximum_nights",
	"has_availability", "availability_30", "availability_60", "availability_90",
	"availability_365", "number_of_reviews", "number_of_reviews_ltm",
	"number_of_reviews_l30d", "instant_bookable", "reviews_per_month",
}
