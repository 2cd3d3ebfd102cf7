// Package unify merges the standardized registry records of one property into
// a single property.Property.
//
// The Unifier is pure and synchronous: it performs no I/O, keeps no state
// between calls and is safe for concurrent use.
package unify

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/propverify/pkg/adapter"
	"github.com/agentstation/propverify/pkg/authority"
	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/logging"
	"github.com/agentstation/propverify/pkg/normalize"
	"github.com/agentstation/propverify/pkg/property"
	"github.com/agentstation/propverify/pkg/provenance"
	"github.com/agentstation/propverify/pkg/record"
	"github.com/agentstation/propverify/pkg/regions"
	"github.com/agentstation/propverify/pkg/types"
)

// Inputs are the raw registry records of one property. A nil record means the
// registry has no data for it.
type Inputs struct {
	Doris  record.Record
	Dlr    record.Record
	Cersai record.Record
	Mca21  record.Record

	// PropertyID is used when no record carries a propertyId, and in the
	// NoDataFound error.
	PropertyID string
}

// Get returns the record for source.
func (in Inputs) Get(source types.SourceID) record.Record {
	switch source {
	case types.DORIS:
		return in.Doris
	case types.DLR:
		return in.Dlr
	case types.CERSAI:
		return in.Cersai
	case types.MCA21:
		return in.Mca21
	default:
		return nil
	}
}

// InputsFrom builds Inputs from records keyed by source. Unknown sources are ignored.
func InputsFrom(propertyID string, records map[types.SourceID]record.Record) Inputs {
	return Inputs{
		Doris:      records[types.DORIS],
		Dlr:        records[types.DLR],
		Cersai:     records[types.CERSAI],
		Mca21:      records[types.MCA21],
		PropertyID: propertyID,
	}
}

// Result is a unified property and the provenance of each of its leaves.
type Result struct {
	Property   *property.Property `json:"property" yaml:"property"`
	Provenance provenance.Map     `json:"provenance" yaml:"provenance"`
}

// Report renders the provenance of the result.
func (r *Result) Report() *provenance.Report {
	return provenance.GenerateReport(r.Provenance)
}

// Unifier combines registry records using field precedence rules.
type Unifier struct {
	adapter   *adapter.Adapter
	authority authority.Authority
	regions   regions.Table
	now       func() time.Time
	logger    *zerolog.Logger
}

// New creates a Unifier with the default adapter, precedence rules and region table.
func New(opts ...Option) *Unifier {
	u := &Unifier{
		authority: authority.New(),
		regions:   regions.Default(),
		now:       time.Now,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.adapter == nil {
		u.adapter = adapter.New(adapter.WithLogger(u.logger))
	}
	return u
}

// CreateUnifiedData unifies in with a default Unifier.
func CreateUnifiedData(in Inputs) (*property.Property, error) {
	return New().CreateUnifiedData(in)
}

// CreateUnifiedData returns the unified property for in. It fails with a
// *errors.NoDataFoundError when every input is nil.
func (u *Unifier) CreateUnifiedData(in Inputs) (*property.Property, error) {
	res, err := u.Unify(in)
	if err != nil {
		return nil, err
	}
	return res.Property, nil
}

// Unify is CreateUnifiedData that also returns field-level provenance.
func (u *Unifier) Unify(in Inputs) (*Result, error) {
	std := make(map[types.SourceID]record.Record, len(types.SourceIDs()))
	for _, id := range types.SourceIDs() {
		if rec := u.adapter.MapSourceData(in.Get(id), id); rec != nil {
			std[id] = rec
		}
	}

	// Availability is decided before any defaulting.
	integrated := property.Integration{
		Doris:  std[types.DORIS] != nil,
		Dlr:    std[types.DLR] != nil,
		Cersai: std[types.CERSAI] != nil,
		Mca21:  std[types.MCA21] != nil,
	}
	if integrated.Count() == 0 {
		return nil, errors.NewNoDataFoundError(in.PropertyID)
	}

	now := u.now().UTC()
	r := &run{
		authority: u.authority,
		std:       std,
		now:       now,
		tracker:   provenance.NewTracker(true),
	}

	id, idProv := r.propertyID(in.PropertyID)
	r.id = id
	r.track("propertyId", idProv)

	p := &property.Property{
		PropertyID:            id,
		Property:              r.details(u.regions),
		Encumbrance:           property.Encumbrance{IsMortgaged: false},
		DataSourcesIntegrated: integrated,
		GeneratedAt:           now,
	}
	if integrated.Doris {
		p.Owner = r.owner()
	}
	if integrated.Cersai {
		p.Encumbrance = r.encumbrance()
	}
	if integrated.Mca21 {
		p.CompanyDetails = r.company()
	}

	u.logger.Debug().
		Str("property_id", id).
		Strs("sources", sourceNames(integrated.Sources())).
		Msg("Unified property")

	return &Result{Property: p, Provenance: r.tracker.Map()}, nil
}

// run holds the state of one Unify call.
type run struct {
	authority authority.Authority
	std       map[types.SourceID]record.Record
	now       time.Time
	tracker   provenance.Tracker
	id        string
}

// resolve walks the precedence chain of path and returns the first value that
// is not the sentinel. Sources holding the sentinel are skipped.
func (r *run) resolve(l leaf) any {
	chain := r.authority.Chain(l.path, types.ResourceTypeProperty)

	prov := provenance.Provenance{
		Field:     l.field,
		Value:     normalize.NoData,
		Timestamp: r.now,
		Reason:    provenance.ReasonDefault,
	}
	winner := -1
	for i, auth := range chain {
		rec := r.std[auth.Source]
		if rec == nil {
			continue
		}
		v, ok := rec[l.field]
		if !ok {
			continue
		}
		prov.Candidates = append(prov.Candidates, provenance.Candidate{Source: auth.Source, Value: v})
		if winner < 0 && !normalize.IsNoData(v) {
			winner = i
			prov.Source = auth.Source
			prov.Value = v
			prov.Priority = auth.Priority
			prov.Reason = provenance.ReasonFallback
			if i == 0 {
				prov.Reason = provenance.ReasonAuthority
			}
		}
	}

	r.track(l.path, prov)
	return prov.Value
}

func (r *run) track(path string, prov provenance.Provenance) {
	r.tracker.Track(types.ResourceTypeProperty, r.id, path, prov)
}

// propertyID returns the first real propertyId in source order, then the
// caller's hint, then the sentinel.
func (r *run) propertyID(hint string) (string, provenance.Provenance) {
	prov := provenance.Provenance{
		Field:     record.PropertyIDField,
		Timestamp: r.now,
	}
	for i, auth := range r.authority.Chain("propertyId", types.ResourceTypeProperty) {
		rec := r.std[auth.Source]
		if rec == nil {
			continue
		}
		v, ok := rec[record.PropertyIDField]
		if !ok || normalize.IsNoData(v) {
			continue
		}
		id := strings.TrimSpace(fmt.Sprint(v))
		if id == "" {
			continue
		}
		prov.Source = auth.Source
		prov.Value = id
		prov.Priority = auth.Priority
		prov.Reason = provenance.ReasonFallback
		if i == 0 {
			prov.Reason = provenance.ReasonAuthority
		}
		return id, prov
	}

	prov.Reason = provenance.ReasonDefault
	if hint != "" {
		prov.Value = hint
		return hint, prov
	}
	prov.Value = normalize.NoData
	return normalize.NoData, prov
}

func (r *run) details(table regions.Table) property.Details {
	v := r.resolveAll(detailLeaves)

	d := property.Details{
		RegistrationNumber: v["property.registrationNumber"],
		RegistrationDate:   v["property.registrationDate"],
		SRO:                v["property.sro"],
		KhasraNumber:       v["property.khasraNumber"],
		KhataNumber:        v["property.khataNumber"],
		SurveyNumber:       v["property.surveyNumber"],
		PlotNumber:         v["property.plotNumber"],
		PropertyType:       v["property.propertyType"],
		AreaSize:           v["property.areaSize"],
		PropertyAddress:    v["property.propertyAddress"],
		StateCode:          v["property.stateCode"],
		District:           v["property.district"],
		Tehsil:             v["property.tehsil"],
		Village:            v["property.village"],
		MutationStatus:     v["property.mutationStatus"],
		MutationDate:       v["property.mutationDate"],
		LastUpdatedDate:    v["property.lastUpdatedDate"],
	}

	d.StateName = stateName(table, d.StateCode)
	r.track("property.stateName", provenance.Provenance{
		Field:     "stateCode",
		Value:     d.StateName,
		Timestamp: r.now,
		Reason:    provenance.ReasonDerived,
	})
	return d
}

func (r *run) owner() *property.Owner {
	v := r.resolveAll(ownerLeaves)
	return &property.Owner{
		Name:              v["owner.name"],
		FatherHusbandName: v["owner.fatherHusbandName"],
		Gender:            v["owner.gender"],
		DateOfBirth:       v["owner.dateOfBirth"],
		ContactInfo: property.ContactInfo{
			AadhaarNumber: v["owner.contactInfo.aadhaarNumber"],
			MobileNumber:  v["owner.contactInfo.mobileNumber"],
			Email:         v["owner.contactInfo.email"],
		},
		Address: v["owner.address"],
	}
}

func (r *run) encumbrance() property.Encumbrance {
	loan := r.resolveAll(loanLeaves)
	charge := r.resolveAll(chargeLeaves)
	return property.Encumbrance{
		IsMortgaged: IsMortgaged(r.resolve(leaf{"encumbrance.isMortgaged", "isMortgaged"})),
		LoanDetails: &property.Loan{
			BankName:          loan["encumbrance.loanDetails.bankName"],
			LoanAmount:        loan["encumbrance.loanDetails.loanAmount"],
			LoanAccountNumber: loan["encumbrance.loanDetails.loanAccountNumber"],
			LoanType:          loan["encumbrance.loanDetails.loanType"],
			SanctionDate:      loan["encumbrance.loanDetails.sanctionDate"],
			LoanStatus:        loan["encumbrance.loanDetails.loanStatus"],
		},
		ChargeDetails: &property.Charge{
			ChargeID:           charge["encumbrance.chargeDetails.chargeId"],
			ChargeType:         charge["encumbrance.chargeDetails.chargeType"],
			ChargeHolder:       charge["encumbrance.chargeDetails.chargeHolder"],
			ChargeCreationDate: charge["encumbrance.chargeDetails.chargeCreationDate"],
			ChargeAmount:       charge["encumbrance.chargeDetails.chargeAmount"],
			ChargeStatus:       charge["encumbrance.chargeDetails.chargeStatus"],
		},
	}
}

func (r *run) company() *property.Company {
	v := r.resolveAll(companyLeaves)
	return &property.Company{
		CIN:               v["companyDetails.cin"],
		CompanyName:       v["companyDetails.companyName"],
		CompanyType:       v["companyDetails.companyType"],
		CompanyStatus:     v["companyDetails.companyStatus"],
		IncorporationDate: v["companyDetails.incorporationDate"],
		RegisteredAddress: v["companyDetails.registeredAddress"],
		AuthorizedCapital: v["companyDetails.authorizedCapital"],
		PaidUpCapital:     v["companyDetails.paidUpCapital"],
		ROCCode:           v["companyDetails.rocCode"],
		Directors:         v["companyDetails.directors"],
	}
}

func (r *run) resolveAll(leaves []leaf) map[string]any {
	out := make(map[string]any, len(leaves))
	for _, l := range leaves {
		out[l.path] = r.resolve(l)
	}
	return out
}

// stateName looks up a string code in table. Unknown codes, the sentinel and
// non-string values pass through unchanged.
func stateName(table regions.Table, code any) any {
	s, ok := code.(string)
	if !ok || normalize.IsNoData(s) {
		return code
	}
	return table.Name(s)
}

// IsMortgaged interprets a CERSAI mortgage status. Booleans are used as is;
// strings such as "Yes", "Mortgaged" or "Active" and non-zero numbers are true.
// The sentinel and anything unrecognized are false.
func IsMortgaged(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "yes", "y", "true", "1", "mortgaged", "active", "registered", "subsisting":
			return true
		}
		return false
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	default:
		return false
	}
}

func sourceNames(ids []types.SourceID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}
	return names
}
