package dataset

import (
	"fmt"
	"strings"
)

// Kind names a known dataset shape.
type Kind string

const (
	Generic  Kind = "generic"
	Listings Kind = "listings"
	Items    Kind = "items"
	Reviews  Kind = "reviews"
	Users    Kind = "users"
)

// Kinds lists every known kind.
var Kinds = []Kind{Listings, Items, Reviews, Users, Generic}

// ParseKind accepts a kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown dataset kind %q", s)
}

// Spec describes how raw columns of a kind are typed.
type Spec struct {
	// Columns is the subset read from the source. Nil reads every column.
	Columns []string
	// Times are parsed to datetimes; unparseable values become null.
	Times []string
	// Numbers are parsed to numbers; non-numeric text becomes null.
	Numbers []string
	// Categories are trimmed strings with null mapped to "None".
	Categories []string
	// AgeBucket derives age_bucket from age.
	AgeBucket bool
	// InferTypes types every remaining column by majority vote.
	InferTypes bool
}

// Column names shared by the dashboards.
const (
	ColLatitude      = "latitude"
	ColLongitude     = "longitude"
	ColAddress       = "abbreviatedAddress"
	ColSubdivision   = "subdivisionName"
	ColDatePosted    = "datePostedString"
	ColDateSold      = "dateSoldString"
	ColPrice         = "price"
	ColDescription   = "description"
	ColUserID        = "user_id"
	ColTimestamp     = "timestamp"
	ColRating        = "rating"
	ColHelpfulVote   = "helpful_vote"
	ColText          = "text"
	ColTitle         = "title"
	ColMainCategory  = "main_category"
	ColStore         = "store"
	ColAverageRating = "average_rating"
	ColRatingNumber  = "rating_number"
	ColAge           = "age"
	ColAgeBucket     = "age_bucket"
)

// ListingColumns is the exact column subset read from listing CSVs.
var ListingColumns = []string{ColLatitude, ColLongitude, ColAddress, ColSubdivision, ColDatePosted, ColDateSold, ColPrice, ColDescription}

var specs = map[Kind]Spec{
	Listings: {
		Columns: ListingColumns,
		Times:   []string{ColDatePosted, ColDateSold},
		Numbers: []string{ColPrice, ColLatitude, ColLongitude},
	},
	Items: {
		Numbers:    []string{ColAverageRating, ColRatingNumber, ColPrice},
		Categories: []string{ColMainCategory, ColStore},
	},
	Reviews: {
		Times:   []string{ColTimestamp},
		Numbers: []string{ColRating, ColHelpfulVote},
	},
	Users: {
		Numbers:   []string{ColAge},
		AgeBucket: true,
	},
	Generic: {InferTypes: true},
}

// SpecFor returns the typing rules for a kind.
func SpecFor(k Kind) Spec {
	if s, ok := specs[k]; ok {
		return s
	}
	return specs[Generic]
}
