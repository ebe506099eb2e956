package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// JSON keys of the typed record fields.
const (
	FieldCompanyName   = "company_name"
	FieldURL           = "url"
	FieldFundingAmount = "funding_amount"
	FieldFundingRound  = "funding_round"
	FieldIndustry      = "industry"
	FieldLocation      = "location"
	FieldDescription   = "description"
	FieldInvestors     = "investors"
	FieldSource        = "source"
	FieldTitle         = "title"
	FieldWebsite       = "website"
	FieldDiscoveryDate = "discovery_date"
	FieldPublishedDate = "published_date"
	FieldTechStack     = "tech_stack"
	FieldHiringNeeds   = "hiring_needs"
	FieldProductFocus  = "product_focus"
)

// Key identifies a funded company across sources. Two records describe the
// same entity iff both components are equal.
type Key struct {
	CompanyName string
	URL         string
}

func (k Key) String() string {
	return k.CompanyName + " <" + k.URL + ">"
}

// Record is one candidate startup-funding record. FundingAmount is in
// millions of USD. Keys not modelled here are kept in Extra and written back
// verbatim.
type Record struct {
	CompanyName   string
	URL           string
	FundingAmount *float64
	FundingRound  FundingRound
	Industry      string
	Location      string
	Description   string
	Investors     []string
	Source        string
	Title         string
	Website       string
	DiscoveryDate Date
	PublishedDate Date
	TechStack     []string
	HiringNeeds   []string
	ProductFocus  string
	Extra         map[string]any
}

// Key returns the identity key of r, or false when either component is empty.
func (r Record) Key() (Key, bool) {
	name := strings.TrimSpace(r.CompanyName)
	url := strings.TrimSpace(r.URL)
	if name == "" || url == "" {
		return Key{}, false
	}
	return Key{CompanyName: name, URL: url}, true
}

// Completeness counts the populated fields of r. Strings count when
// non-empty, numbers when present, lists when non-empty and dates when set.
// Every Extra key counts unless its value is null or empty.
func (r Record) Completeness() int {
	n := 0
	for _, s := range []string{
		r.CompanyName, r.URL, string(r.FundingRound), r.Industry, r.Location,
		r.Description, r.Source, r.Title, r.Website, r.ProductFocus,
	} {
		if s != "" {
			n++
		}
	}
	if r.FundingAmount != nil {
		n++
	}
	for _, l := range [][]string{r.Investors, r.TechStack, r.HiringNeeds} {
		if len(l) > 0 {
			n++
		}
	}
	if !r.DiscoveryDate.IsZero() {
		n++
	}
	if !r.PublishedDate.IsZero() {
		n++
	}
	for _, v := range r.Extra {
		if populated(v) {
			n++
		}
	}
	return n
}

// Has reports whether the named field is populated.
func (r Record) Has(field string) bool {
	switch field {
	case FieldCompanyName:
		return r.CompanyName != ""
	case FieldURL:
		return r.URL != ""
	case FieldFundingAmount:
		return r.FundingAmount != nil
	case FieldFundingRound:
		return r.FundingRound != ""
	case FieldIndustry:
		return r.Industry != ""
	case FieldLocation:
		return r.Location != ""
	case FieldDescription:
		return r.Description != ""
	case FieldInvestors:
		return len(r.Investors) > 0
	case FieldSource:
		return r.Source != ""
	case FieldTitle:
		return r.Title != ""
	case FieldWebsite:
		return r.Website != ""
	case FieldDiscoveryDate:
		return !r.DiscoveryDate.IsZero()
	case FieldPublishedDate:
		return !r.PublishedDate.IsZero()
	case FieldTechStack:
		return len(r.TechStack) > 0
	case FieldHiringNeeds:
		return len(r.HiringNeeds) > 0
	case FieldProductFocus:
		return r.ProductFocus != ""
	}
	v, ok := r.Extra[field]
	return ok && populated(v)
}

// Amount returns the funding amount in millions, or 0 when absent.
func (r Record) Amount() float64 {
	if r.FundingAmount == nil {
		return 0
	}
	return *r.FundingAmount
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	c := r
	if r.FundingAmount != nil {
		v := *r.FundingAmount
		c.FundingAmount = &v
	}
	c.Investors = cloneStrings(r.Investors)
	c.TechStack = cloneStrings(r.TechStack)
	c.HiringNeeds = cloneStrings(r.HiringNeeds)
	if r.Extra != nil {
		c.Extra = make(map[string]any, len(r.Extra))
		for k, v := range r.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// Float returns a pointer to v, for populating FundingAmount.
func Float(v float64) *float64 {
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func populated(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

// MarshalJSON writes r as a flat object. Only populated typed fields are
// emitted; Extra keys are emitted as stored.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 16+len(r.Extra))
	for k, v := range r.Extra {
		m[k] = v
	}
	setString := func(key, v string) {
		if v != "" {
			m[key] = v
		}
	}
	setList := func(key string, v []string) {
		if len(v) > 0 {
			m[key] = v
		}
	}
	setString(FieldCompanyName, r.CompanyName)
	setString(FieldURL, r.URL)
	if r.FundingAmount != nil {
		m[FieldFundingAmount] = *r.FundingAmount
	}
	setString(FieldFundingRound, string(r.FundingRound))
	setString(FieldIndustry, r.Industry)
	setString(FieldLocation, r.Location)
	setString(FieldDescription, r.Description)
	setList(FieldInvestors, r.Investors)
	setString(FieldSource, r.Source)
	setString(FieldTitle, r.Title)
	setString(FieldWebsite, r.Website)
	if !r.DiscoveryDate.IsZero() {
		m[FieldDiscoveryDate] = r.DiscoveryDate.String()
	}
	if !r.PublishedDate.IsZero() {
		m[FieldPublishedDate] = r.PublishedDate.String()
	}
	setList(FieldTechStack, r.TechStack)
	setList(FieldHiringNeeds, r.HiringNeeds)
	setString(FieldProductFocus, r.ProductFocus)
	// encoding/json sorts map keys, which keeps collection diffs stable.
	return json.Marshal(m)
}

// UnmarshalJSON decodes a record object, coercing loosely typed values.
// Strings are trimmed and null is treated as absent. Values that cannot be
// coerced into their typed field are kept in Extra under the same key.
func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return eris.Wrap(err, "model: decode record")
	}
	*r = FromMap(m)
	return nil
}

// FromMap builds a Record from a generic key/value map, such as a decoded
// JSON object or a CSV row.
func FromMap(m map[string]any) Record {
	var r Record
	for k, v := range m {
		if v == nil {
			continue
		}
		if !r.set(k, v) {
			if r.Extra == nil {
				r.Extra = make(map[string]any)
			}
			r.Extra[k] = v
		}
	}
	return r
}

// set assigns v to the typed field named key, reporting false when key is not
// a typed field or v cannot be coerced.
func (r *Record) set(key string, v any) bool {
	switch key {
	case FieldCompanyName:
		return setString(&r.CompanyName, v)
	case FieldURL:
		return setString(&r.URL, v)
	case FieldFundingAmount:
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return true
		}
		amount, ok := coerceAmount(v)
		if ok {
			r.FundingAmount = &amount
		}
		return ok
	case FieldFundingRound:
		var s string
		if !setString(&s, v) {
			return false
		}
		r.FundingRound = ParseFundingRound(s)
		return true
	case FieldIndustry:
		return setString(&r.Industry, v)
	case FieldLocation:
		return setString(&r.Location, v)
	case FieldDescription:
		return setString(&r.Description, v)
	case FieldInvestors:
		return setList(&r.Investors, v)
	case FieldSource:
		return setString(&r.Source, v)
	case FieldTitle:
		return setString(&r.Title, v)
	case FieldWebsite:
		return setString(&r.Website, v)
	case FieldDiscoveryDate:
		return setDate(&r.DiscoveryDate, v)
	case FieldPublishedDate:
		return setDate(&r.PublishedDate, v)
	case FieldTechStack:
		return setList(&r.TechStack, v)
	case FieldHiringNeeds:
		return setList(&r.HiringNeeds, v)
	case FieldProductFocus:
		return setString(&r.ProductFocus, v)
	}
	return false
}

func setString(dst *string, v any) bool {
	switch t := v.(type) {
	case string:
		*dst = strings.TrimSpace(t)
		return true
	case float64:
		*dst = fmt.Sprint(t)
		return true
	case bool:
		*dst = fmt.Sprint(t)
		return true
	}
	return false
}

func setList(dst *[]string, v any) bool {
	switch t := v.(type) {
	case string:
		*dst = SplitList(t)
		return true
	case []string:
		*dst = compact(t)
		return true
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			switch s := item.(type) {
			case nil:
			case string:
				items = append(items, s)
			default:
				items = append(items, fmt.Sprint(s))
			}
		}
		*dst = compact(items)
		return true
	}
	return false
}

func setDate(dst *Date, v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	d, err := ParseDate(s)
	if err != nil {
		return false
	}
	*dst = d
	return true
}

func coerceAmount(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		return ParseFundingAmount(t)
	}
	return 0, false
}

// SplitList splits a comma-separated string into trimmed, non-empty items.
func SplitList(s string) []string {
	return compact(strings.Split(s, ","))
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
