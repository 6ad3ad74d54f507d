package breakdown

import (
	"regexp"
	"strconv"
	"strings"
)

// Record is a partially-filled breakdown input. Zero means the field has not
// been captured yet; captured values are always positive.
type Record struct {
	Spots      int
	Boxes      int
	CostPerBox float64
}

// Complete reports whether every required field holds a positive value.
func (r Record) Complete() bool {
	return r.Spots > 0 && r.Boxes > 0 && r.CostPerBox > 0
}

// Extraction is the result of running the rule cascade over one command body.
type Extraction struct {
	Data       Record
	Missing    []string
	Normalized string
}

// Field identifiers, in the fixed order the wizard asks for them.
const (
	FieldSpots      = "spots"
	FieldBoxes      = "boxes"
	FieldCostPerBox = "costPerBox"
)

var fieldOrder = []string{FieldSpots, FieldBoxes, FieldCostPerBox}

// Human labels used in the missing-field list.
var fieldLabels = map[string]string{
	FieldSpots:      "spots",
	FieldBoxes:      "boxes",
	FieldCostPerBox: "cost per box",
}

var (
	reCurrency = regexp.MustCompile(`[$,]`)
	reSpaces   = regexp.MustCompile(`\s+`)

	reSpots      = regexp.MustCompile(`\b(\d+)\s*spots?\b`)
	reBoxes      = regexp.MustCompile(`\b(\d+)\s*box(?:es)?\b`)
	reAtPrice    = regexp.MustCompile(`\b(?:at|@)\s*(\d+(?:\.\d{1,2})?)\b`)
	reEachPrice  = regexp.MustCompile(`\b(\d+(?:\.\d{1,2})?)\s*(?:each|ea)\b`)
	rePerBox     = regexp.MustCompile(`\b(\d+(?:\.\d{1,2})?)\s*(?:a|per)\s*box(?:es)?\b`)
	reMultiply   = regexp.MustCompile(`\b(\d+)\s*[x*]\s*(\d+(?:\.\d{1,2})?)\b`)
	reNumToken   = regexp.MustCompile(`\b\d+(?:\.\d{1,2})?\b`)
	reSingleBox  = regexp.MustCompile(`\ba\s+box\b`)
	reFirstToken = regexp.MustCompile(`\b\d+(?:\.\d{1,2})?\b`)
)

// extractRule fills fields it can find in the normalized text, leaving fields
// already set untouched. Rules run in declaration order; the order is part of
// the extractor's contract.
type extractRule struct {
	name  string
	apply func(norm string, rec Record) Record
}

var extractRules = []extractRule{
	{"labeled counts", ruleLabeledCounts},
	{"labeled price", ruleLabeledPrice},
	{"price per box", rulePricePerBox},
	{"count times price", ruleCountTimesPrice},
	{"leftover price token", ruleLeftoverPriceToken},
	{"a box means one", ruleSingleBoxPhrase},
}

// Extract runs the rule cascade over one command body (everything after the
// trigger keyword) and reports which required fields are still missing.
func Extract(input string) Extraction {
	norm := normalize(input)

	var rec Record
	for _, rule := range extractRules {
		rec = rule.apply(norm, rec)
	}

	var missing []string
	if rec.Spots <= 0 {
		missing = append(missing, fieldLabels[FieldSpots])
	}
	if rec.Boxes <= 0 {
		missing = append(missing, fieldLabels[FieldBoxes])
	}
	if rec.CostPerBox <= 0 {
		missing = append(missing, fieldLabels[FieldCostPerBox])
	}

	return Extraction{Data: rec, Missing: missing, Normalized: norm}
}

func normalize(input string) string {
	lower := strings.ToLower(strings.TrimSpace(input))
	noCurrency := reCurrency.ReplaceAllString(lower, " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(noCurrency, " "))
}

func ruleLabeledCounts(norm string, rec Record) Record {
	if rec.Spots == 0 {
		if m := reSpots.FindStringSubmatch(norm); m != nil {
			rec.Spots, _ = strconv.Atoi(m[1])
		}
	}
	if rec.Boxes == 0 {
		if m := reBoxes.FindStringSubmatch(norm); m != nil {
			rec.Boxes, _ = strconv.Atoi(m[1])
		}
	}
	return rec
}

func ruleLabeledPrice(norm string, rec Record) Record {
	if rec.CostPerBox != 0 {
		return rec
	}
	if m := reAtPrice.FindStringSubmatch(norm); m != nil {
		rec.CostPerBox, _ = strconv.ParseFloat(m[1], 64)
		return rec
	}
	if m := reEachPrice.FindStringSubmatch(norm); m != nil {
		rec.CostPerBox, _ = strconv.ParseFloat(m[1], 64)
	}
	return rec
}

func rulePricePerBox(norm string, rec Record) Record {
	if rec.CostPerBox != 0 {
		return rec
	}
	if m := rePerBox.FindStringSubmatch(norm); m != nil {
		rec.CostPerBox, _ = strconv.ParseFloat(m[1], 64)
	}
	return rec
}

// "3 x 98.98" assigns the left operand to boxes and the right to price, but
// only fills fields still unset.
func ruleCountTimesPrice(norm string, rec Record) Record {
	if rec.Boxes != 0 && rec.CostPerBox != 0 {
		return rec
	}
	m := reMultiply.FindStringSubmatch(norm)
	if m == nil {
		return rec
	}
	if rec.Boxes == 0 {
		rec.Boxes, _ = strconv.Atoi(m[1])
	}
	if rec.CostPerBox == 0 {
		rec.CostPerBox, _ = strconv.ParseFloat(m[2], 64)
	}
	return rec
}

// If spots and boxes were both found by label but price is still unset, the
// price is probably the one number left over. Prefer a decimal candidate;
// otherwise take the last one. Known weakness: an unrelated trailing integer
// wins when no decimal is present.
func ruleLeftoverPriceToken(norm string, rec Record) Record {
	if rec.Spots == 0 || rec.Boxes == 0 || rec.CostPerBox != 0 {
		return rec
	}

	var candidates []float64
	for _, tok := range reNumToken.FindAllString(norm, -1) {
		n, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		if n == float64(rec.Spots) || n == float64(rec.Boxes) {
			continue
		}
		candidates = append(candidates, n)
	}
	if len(candidates) == 0 {
		return rec
	}

	for _, n := range candidates {
		if n != float64(int64(n)) {
			rec.CostPerBox = n
			return rec
		}
	}
	rec.CostPerBox = candidates[len(candidates)-1]
	return rec
}

func ruleSingleBoxPhrase(norm string, rec Record) Record {
	if rec.Boxes == 0 && reSingleBox.MatchString(norm) {
		rec.Boxes = 1
	}
	return rec
}

// firstNumber pulls the first numeric token out of free text, normalized the
// same way as the extractor. Returns 0 when no token is present.
func firstNumber(input string) float64 {
	m := reFirstToken.FindString(normalize(input))
	if m == "" {
		return 0
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return n
}
