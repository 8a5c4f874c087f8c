package domain

import (
	"path/filepath"
	"strings"
)

const (
	libraryRoot  = "https://www.bahai.org/library/"
	libraryTexts = libraryRoot + "authoritative-texts/"
)

// libraryPaths maps source file stems to their path in the reference library.
var libraryPaths = map[string]string{
	"kitab-i-iqan":                   "bahaullah/kitab-i-iqan/",
	"hidden-words":                   "bahaullah/hidden-words/",
	"gleanings-writings-bahaullah":   "bahaullah/gleanings-writings-bahaullah/",
	"kitab-i-aqdas-2":                "bahaullah/kitab-i-aqdas/",
	"kitab-i-aqdas":                  "bahaullah/kitab-i-aqdas/",
	"epistle-son-wolf":               "bahaullah/epistle-son-wolf/",
	"gems-divine-mysteries":          "bahaullah/gems-divine-mysteries/",
	"summons-lord-hosts":             "bahaullah/summons-lord-hosts/",
	"tablets-bahaullah":              "bahaullah/tablets-bahaullah/",
	"tabernacle-unity":               "bahaullah/tabernacle-unity/",
	"prayers-meditations":            "bahaullah/prayers-meditations/",
	"some-answered-questions":        "abdul-baha/some-answered-questions/",
	"paris-talks":                    "abdul-baha/paris-talks/",
	"promulgation-universal-peace":   "abdul-baha/promulgation-universal-peace/",
	"memorials-faithful":             "abdul-baha/memorials-faithful/",
	"selections-writings-abdul-baha": "abdul-baha/selections-writings-abdul-baha/",
	"secret-divine-civilization":     "abdul-baha/secret-divine-civilization/",
	"travelers-narrative":            "abdul-baha/travelers-narrative/",
	"will-testament-abdul-baha":      "abdul-baha/will-testament-abdul-baha/",
	"tablets-divine-plan":            "abdul-baha/tablets-divine-plan/",
	"tablet-auguste-forel":           "abdul-baha/tablet-auguste-forel/",
	"selections-writings-bab":        "the-bab/selections-writings-bab/",
	"advent-divine-justice":          "shoghi-effendi/advent-divine-justice/",
	"god-passes-by":                  "shoghi-effendi/god-passes-by/",
	"promised-day-come":              "shoghi-effendi/promised-day-come/",
	"world-order-bahaullah":          "shoghi-effendi/world-order-bahaullah/",
	"days-remembrance":               "compilations/days-remembrance/",
	"light-of-the-world":             "compilations/light-of-the-world/",
	"turning-point":                  "compilations/turning-point/",
}

// LibraryURL returns the reference library page for a source file.
// Unknown sources link to the library root.
func LibraryURL(sourceFile string) string {
	stem := strings.ToLower(filepath.Base(sourceFile))
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	if path, ok := libraryPaths[stem]; ok {
		return libraryTexts + path
	}
	return libraryRoot
}
