// Package property defines the unified property record produced by merging
// the registry records of one property.
//
// Every scalar leaf holds either a real value or normalize.NoData; leaves are
// never absent. Sections that depend on a single registry (owner, company
// details) are nil when that registry had no record.
package property

import (
	"time"

	"github.com/agentstation/propverify/pkg/types"
)

// Property is the unified record of a property across all registries.
type Property struct {
	PropertyID            string      `json:"propertyId" yaml:"propertyId"`
	Property              Details     `json:"property" yaml:"property"`
	Owner                 *Owner      `json:"owner" yaml:"owner"`
	Encumbrance           Encumbrance `json:"encumbrance" yaml:"encumbrance"`
	CompanyDetails        *Company    `json:"companyDetails" yaml:"companyDetails"`
	DataSourcesIntegrated Integration `json:"dataSourcesIntegrated" yaml:"dataSourcesIntegrated"`

	// Revision is assigned by the store and incremented on every write.
	Revision int64 `json:"revision" yaml:"revision"`
	// GeneratedAt is when the record was unified.
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`
}

// Details describes the land parcel itself.
type Details struct {
	RegistrationNumber any `json:"registrationNumber" yaml:"registrationNumber"`
	RegistrationDate   any `json:"registrationDate" yaml:"registrationDate"`
	SRO                any `json:"sro" yaml:"sro"`
	KhasraNumber       any `json:"khasraNumber" yaml:"khasraNumber"`
	KhataNumber        any `json:"khataNumber" yaml:"khataNumber"`
	SurveyNumber       any `json:"surveyNumber" yaml:"surveyNumber"`
	PlotNumber         any `json:"plotNumber" yaml:"plotNumber"`
	PropertyType       any `json:"propertyType" yaml:"propertyType"`
	AreaSize           any `json:"areaSize" yaml:"areaSize"`
	PropertyAddress    any `json:"propertyAddress" yaml:"propertyAddress"`
	StateCode          any `json:"stateCode" yaml:"stateCode"`
	StateName          any `json:"stateName" yaml:"stateName"`
	District           any `json:"district" yaml:"district"`
	Tehsil             any `json:"tehsil" yaml:"tehsil"`
	Village            any `json:"village" yaml:"village"`
	MutationStatus     any `json:"mutationStatus" yaml:"mutationStatus"`
	MutationDate       any `json:"mutationDate" yaml:"mutationDate"`
	LastUpdatedDate    any `json:"lastUpdatedDate" yaml:"lastUpdatedDate"`
}

// Owner is the registered owner from the deed registry.
type Owner struct {
	Name              any         `json:"name" yaml:"name"`
	FatherHusbandName any         `json:"fatherHusbandName" yaml:"fatherHusbandName"`
	Gender            any         `json:"gender" yaml:"gender"`
	DateOfBirth       any         `json:"dateOfBirth" yaml:"dateOfBirth"`
	ContactInfo       ContactInfo `json:"contactInfo" yaml:"contactInfo"`
	Address           any         `json:"address" yaml:"address"`
}

// ContactInfo holds the owner's identifiers and contact details.
type ContactInfo struct {
	AadhaarNumber any `json:"aadhaarNumber" yaml:"aadhaarNumber"`
	MobileNumber  any `json:"mobileNumber" yaml:"mobileNumber"`
	Email         any `json:"email" yaml:"email"`
}

// Encumbrance reports mortgages and registered charges. Without a CERSAI
// record it is exactly {isMortgaged: false}.
type Encumbrance struct {
	IsMortgaged   bool    `json:"isMortgaged" yaml:"isMortgaged"`
	LoanDetails   *Loan   `json:"loanDetails,omitempty" yaml:"loanDetails,omitempty"`
	ChargeDetails *Charge `json:"chargeDetails,omitempty" yaml:"chargeDetails,omitempty"`
}

// Loan describes the loan secured against the property.
type Loan struct {
	BankName          any `json:"bankName" yaml:"bankName"`
	LoanAmount        any `json:"loanAmount" yaml:"loanAmount"`
	LoanAccountNumber any `json:"loanAccountNumber" yaml:"loanAccountNumber"`
	LoanType          any `json:"loanType" yaml:"loanType"`
	SanctionDate      any `json:"sanctionDate" yaml:"sanctionDate"`
	LoanStatus        any `json:"loanStatus" yaml:"loanStatus"`
}

// Charge describes the security interest registered with CERSAI.
type Charge struct {
	ChargeID           any `json:"chargeId" yaml:"chargeId"`
	ChargeType         any `json:"chargeType" yaml:"chargeType"`
	ChargeHolder       any `json:"chargeHolder" yaml:"chargeHolder"`
	ChargeCreationDate any `json:"chargeCreationDate" yaml:"chargeCreationDate"`
	ChargeAmount       any `json:"chargeAmount" yaml:"chargeAmount"`
	ChargeStatus       any `json:"chargeStatus" yaml:"chargeStatus"`
}

// Company is the owning company from the company registry.
type Company struct {
	CIN               any `json:"cin" yaml:"cin"`
	CompanyName       any `json:"companyName" yaml:"companyName"`
	CompanyType       any `json:"companyType" yaml:"companyType"`
	CompanyStatus     any `json:"companyStatus" yaml:"companyStatus"`
	IncorporationDate any `json:"incorporationDate" yaml:"incorporationDate"`
	RegisteredAddress any `json:"registeredAddress" yaml:"registeredAddress"`
	AuthorizedCapital any `json:"authorizedCapital" yaml:"authorizedCapital"`
	PaidUpCapital     any `json:"paidUpCapital" yaml:"paidUpCapital"`
	ROCCode           any `json:"rocCode" yaml:"rocCode"`
	Directors         any `json:"directors" yaml:"directors"`
}

// Integration records which registries held a record for the property.
type Integration struct {
	Doris  bool `json:"doris" yaml:"doris"`
	Dlr    bool `json:"dlr" yaml:"dlr"`
	Cersai bool `json:"cersai" yaml:"cersai"`
	Mca21  bool `json:"mca21" yaml:"mca21"`
}

// Has reports whether source contributed a record.
func (i Integration) Has(source types.SourceID) bool {
	switch source {
	case types.DORIS:
		return i.Doris
	case types.DLR:
		return i.Dlr
	case types.CERSAI:
		return i.Cersai
	case types.MCA21:
		return i.Mca21
	default:
		return false
	}
}

// Sources returns the contributing registries in precedence order.
func (i Integration) Sources() []types.SourceID {
	var out []types.SourceID
	for _, id := range types.SourceIDs() {
		if i.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// Count returns how many registries contributed.
func (i Integration) Count() int {
	return len(i.Sources())
}

// Clone returns a copy of p with its own sections. Leaf values are shared.
func (p *Property) Clone() *Property {
	if p == nil {
		return nil
	}
	c := *p
	if p.Owner != nil {
		owner := *p.Owner
		c.Owner = &owner
	}
	if p.Encumbrance.LoanDetails != nil {
		loan := *p.Encumbrance.LoanDetails
		c.Encumbrance.LoanDetails = &loan
	}
	if p.Encumbrance.ChargeDetails != nil {
		charge := *p.Encumbrance.ChargeDetails
		c.Encumbrance.ChargeDetails = &charge
	}
	if p.CompanyDetails != nil {
		company := *p.CompanyDetails
		c.CompanyDetails = &company
	}
	return &c
}
