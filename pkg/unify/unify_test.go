package unify_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/propverify/pkg/errors"
	"github.com/agentstation/propverify/pkg/logging"
	"github.com/agentstation/propverify/pkg/normalize"
	"github.com/agentstation/propverify/pkg/property"
	"github.com/agentstation/propverify/pkg/provenance"
	"github.com/agentstation/propverify/pkg/record"
	"github.com/agentstation/propverify/pkg/regions"
	"github.com/agentstation/propverify/pkg/types"
	"github.com/agentstation/propverify/pkg/unify"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newUnifier(opts ...unify.Option) *unify.Unifier {
	base := []unify.Option{
		unify.WithClock(func() time.Time { return fixedNow }),
		unify.WithLogger(logging.NewNopLogger()),
	}
	return unify.New(append(base, opts...)...)
}

func dorisRecord() record.Record {
	return record.Record{
		"_id":               "665a1f",
		"propertyId":        "PROP-1A2B3C4D",
		"registrationNo":    "MH/PUN/2021/00042",
		"regDate":           "13/05/2021",
		"sroName":           "Haveli-II",
		"propType":          "Residential",
		"plotArea":          "1200 sq ft",
		"propAddress":       "12 Baner Road, Pune",
		"stateCd":           "MH",
		"districtName":      "Pune",
		"ownerName":         "Asha Patil",
		"fatherHusbandName": "Ravi Patil",
		"ownerGender":       "F",
		"ownerBirthDate":    "1980-02-29",
		"aadhaarNo":         "XXXX-XXXX-4321",
		"mobileNo":          "",
		"emailId":           nil,
		"ownerAddress":      "12 Baner Road, Pune",
	}
}

func dlrRecord() record.Record {
	return record.Record{
		"propertyId":       "PROP-1A2B3C4D",
		"khasraNo":         "221/4",
		"khataNo":          "88",
		"surveyNo":         "17A",
		"plotNo":           "",
		"landUse":          "Agricultural",
		"landArea":         "0.11 hectare",
		"landAddress":      "Baner, Haveli, Pune",
		"stateCd":          "MH",
		"districtName":     "Pune",
		"tehsilName":       "Haveli",
		"villageName":      "Baner",
		"mutationState":    "Approved",
		"mutationDate":     "02-08-2021",
		"recordUpdateDate": "Jan 5, 2024",
	}
}

func cersaiRecord() record.Record {
	return record.Record{
		"propertyId":         "PROP-1A2B3C4D",
		"mortgageStatus":     "Yes",
		"lenderName":         "State Bank of India",
		"loanAmt":            4500000,
		"loanAcctNo":         "",
		"facilityType":       "Home Loan",
		"sanctionDate":       "15-06-2021",
		"loanStatus":         "Active",
		"securityInterestId": "SI-2021-99812",
		"siType":             "Equitable Mortgage",
		"chargeHolder":       "State Bank of India",
		"siCreationDate":     "20-06-2021",
		"siAmount":           4500000,
		"siStatus":           "Subsisting",
	}
}

func mca21Record() record.Record {
	return record.Record{
		"propertyId":              "PROP-1A2B3C4D",
		"CIN":                     "U45200MH2010PTC123456",
		"companyName":             "Baner Estates Pvt Ltd",
		"companyCategory":         "Private",
		"companyStatus":           "Active",
		"dateOfIncorporation":     "2010-04-01",
		"registeredOfficeAddress": "Pune",
		"authorisedCapital":       1000000,
		"paidUpCapital":           0,
		"rocCode":                 "RoC-Pune",
		"directorNames":           []any{"Asha Patil"},
	}
}

func TestCreateUnifiedDataAllSources(t *testing.T) {
	p, err := newUnifier().CreateUnifiedData(unify.Inputs{
		Doris:  dorisRecord(),
		Dlr:    dlrRecord(),
		Cersai: cersaiRecord(),
		Mca21:  mca21Record(),
	})
	require.NoError(t, err)

	assert.Equal(t, "PROP-1A2B3C4D", p.PropertyID)
	assert.Equal(t, fixedNow, p.GeneratedAt)
	assert.Equal(t, property.Integration{Doris: true, Dlr: true, Cersai: true, Mca21: true}, p.DataSourcesIntegrated)

	d := p.Property
	assert.Equal(t, "MH/PUN/2021/00042", d.RegistrationNumber)
	assert.Equal(t, "2021-05-13", d.RegistrationDate)
	assert.Equal(t, "Haveli-II", d.SRO)
	assert.Equal(t, "221/4", d.KhasraNumber)
	assert.Equal(t, normalize.NoData, d.PlotNumber)
	assert.Equal(t, "Residential", d.PropertyType, "deed registry wins over land records")
	assert.Equal(t, "1200 sq ft", d.AreaSize)
	assert.Equal(t, "MH", d.StateCode)
	assert.Equal(t, "Maharashtra", d.StateName)
	assert.Equal(t, "Haveli", d.Tehsil)
	assert.Equal(t, "Approved", d.MutationStatus)
	assert.Equal(t, "2021-08-02", d.MutationDate)
	assert.Equal(t, "2024-01-05", d.LastUpdatedDate)

	require.NotNil(t, p.Owner)
	assert.Equal(t, "Asha Patil", p.Owner.Name)
	assert.Equal(t, "1980-02-29", p.Owner.DateOfBirth)
	assert.Equal(t, normalize.NoData, p.Owner.ContactInfo.MobileNumber)
	assert.Equal(t, normalize.NoData, p.Owner.ContactInfo.Email)
	assert.Equal(t, "XXXX-XXXX-4321", p.Owner.ContactInfo.AadhaarNumber)

	assert.True(t, p.Encumbrance.IsMortgaged)
	require.NotNil(t, p.Encumbrance.LoanDetails)
	assert.Equal(t, "State Bank of India", p.Encumbrance.LoanDetails.BankName)
	assert.Equal(t, 4500000, p.Encumbrance.LoanDetails.LoanAmount)
	assert.Equal(t, normalize.NoData, p.Encumbrance.LoanDetails.LoanAccountNumber)
	assert.Equal(t, "2021-06-15", p.Encumbrance.LoanDetails.SanctionDate)
	require.NotNil(t, p.Encumbrance.ChargeDetails)
	assert.Equal(t, "SI-2021-99812", p.Encumbrance.ChargeDetails.ChargeID)
	assert.Equal(t, "2021-06-20", p.Encumbrance.ChargeDetails.ChargeCreationDate)

	require.NotNil(t, p.CompanyDetails)
	assert.Equal(t, "U45200MH2010PTC123456", p.CompanyDetails.CIN)
	assert.Equal(t, "Private", p.CompanyDetails.CompanyType)
	assert.Equal(t, "2010-04-01", p.CompanyDetails.IncorporationDate)
	assert.Equal(t, 0, p.CompanyDetails.PaidUpCapital, "zero is a real value")
	assert.Equal(t, []any{"Asha Patil"}, p.CompanyDetails.Directors)
}

func TestSourcePrecedence(t *testing.T) {
	t.Run("doris alone supplies district", func(t *testing.T) {
		p, err := newUnifier().CreateUnifiedData(unify.Inputs{
			Doris: record.Record{"propertyId": "PROP-1", "districtName": "Mumbai"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Mumbai", p.Property.District)
	})

	t.Run("doris wins propertyType", func(t *testing.T) {
		p, err := newUnifier().CreateUnifiedData(unify.Inputs{
			Doris: record.Record{"propType": "Commercial"},
			Dlr:   record.Record{"landUse": "Agricultural"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Commercial", p.Property.PropertyType)
	})

	t.Run("dlr fills what doris lacks", func(t *testing.T) {
		p, err := newUnifier().CreateUnifiedData(unify.Inputs{
			Doris: record.Record{"propType": "", "plotArea": nil},
			Dlr:   record.Record{"landUse": "Agricultural", "landArea": "2 acre", "landAddress": "Baner"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Agricultural", p.Property.PropertyType)
		assert.Equal(t, "2 acre", p.Property.AreaSize)
		assert.Equal(t, "Baner", p.Property.PropertyAddress)
	})

	t.Run("dlr wins mutation fields", func(t *testing.T) {
		p, err := newUnifier().CreateUnifiedData(unify.Inputs{
			Doris: record.Record{"mutationStatus": "Pending"},
			Dlr:   record.Record{"mutationState": "Approved"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Approved", p.Property.MutationStatus)
	})

	t.Run("doris alone fills land record fields", func(t *testing.T) {
		p, err := newUnifier().CreateUnifiedData(unify.Inputs{
			Doris: record.Record{"mutationStatus": "Pending", "khasraNo": "12", "tehsilName": "Haveli"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Pending", p.Property.MutationStatus)
		assert.Equal(t, "12", p.Property.KhasraNumber)
		assert.Equal(t, "Haveli", p.Property.Tehsil)
	})

	t.Run("dlr alone fills sro", func(t *testing.T) {
		p, err := newUnifier().CreateUnifiedData(unify.Inputs{
			Dlr: record.Record{"sroName": "Haveli-II"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Haveli-II", p.Property.SRO)
	})

	t.Run("missing everywhere defaults to sentinel", func(t *testing.T) {
		p, err := newUnifier().CreateUnifiedData(unify.Inputs{Dlr: record.Record{}})
		require.NoError(t, err)
		assert.Equal(t, normalize.NoData, p.Property.RegistrationNumber)
		assert.Equal(t, normalize.NoData, p.Property.StateCode)
		assert.Equal(t, normalize.NoData, p.Property.StateName)
	})
}

func TestProvenanceFlags(t *testing.T) {
	p, err := newUnifier().CreateUnifiedData(unify.Inputs{Dlr: dlrRecord()})
	require.NoError(t, err)

	assert.Equal(t, property.Integration{Dlr: true}, p.DataSourcesIntegrated)
	assert.Nil(t, p.Owner)
	assert.Nil(t, p.CompanyDetails)
	assert.Equal(t, property.Encumbrance{IsMortgaged: false}, p.Encumbrance)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]any{"isMortgaged": false}, decoded["encumbrance"])
	assert.Nil(t, decoded["owner"])
	assert.Nil(t, decoded["companyDetails"])
}

func TestSentinelOnlyRecordCountsAsIntegrated(t *testing.T) {
	p, err := newUnifier().CreateUnifiedData(unify.Inputs{
		Cersai:     record.Record{"lenderName": "", "loanAmt": nil},
		PropertyID: "PROP-00C0FFEE",
	})
	require.NoError(t, err)

	assert.True(t, p.DataSourcesIntegrated.Cersai)
	assert.Equal(t, "PROP-00C0FFEE", p.PropertyID, "hint is used when no record carries an id")
	assert.False(t, p.Encumbrance.IsMortgaged)
	require.NotNil(t, p.Encumbrance.LoanDetails)
	assert.Equal(t, normalize.NoData, p.Encumbrance.LoanDetails.BankName)
	require.NotNil(t, p.Encumbrance.ChargeDetails)
	assert.Equal(t, normalize.NoData, p.Encumbrance.ChargeDetails.ChargeStatus)
}

func TestAllAbsentFails(t *testing.T) {
	p, err := newUnifier().CreateUnifiedData(unify.Inputs{PropertyID: "PROP-DEADBEEF"})
	require.Error(t, err)
	assert.Nil(t, p)

	assert.True(t, errors.IsNoDataFound(err))
	assert.True(t, errors.IsNotFound(err))

	var nd *errors.NoDataFoundError
	require.ErrorAs(t, err, &nd)
	assert.Equal(t, "PROP-DEADBEEF", nd.PropertyID)

	_, err = unify.CreateUnifiedData(unify.Inputs{})
	assert.True(t, errors.IsNoDataFound(err))
}

func TestRegionLookup(t *testing.T) {
	tests := []struct {
		name string
		code any
		want any
	}{
		{"known", "KA", "Karnataka"},
		{"lower case", "ka", "Karnataka"},
		{"unknown passes through", "ZZ", "ZZ"},
		{"non-string passes through", 27, 27},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newUnifier().CreateUnifiedData(unify.Inputs{
				Doris: record.Record{"stateCd": tt.code},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Property.StateName)
		})
	}
}

func TestWithRegionsOverridesTable(t *testing.T) {
	u := newUnifier(unify.WithRegions(regions.Table{"ZZ": "Test Region"}))

	p, err := u.CreateUnifiedData(unify.Inputs{Dlr: record.Record{"stateCd": "ZZ"}})
	require.NoError(t, err)
	assert.Equal(t, "Test Region", p.Property.StateName)
}

func TestPropertyIDOrder(t *testing.T) {
	p, err := newUnifier().CreateUnifiedData(unify.Inputs{
		Doris:  record.Record{"propertyId": ""},
		Cersai: record.Record{"propertyId": "PROP-CERSAI01"},
		Mca21:  record.Record{"propertyId": "PROP-MCA21001"},
	})
	require.NoError(t, err)
	assert.Equal(t, "PROP-CERSAI01", p.PropertyID)
}

func TestUnifyTracksFieldProvenance(t *testing.T) {
	res, err := newUnifier().Unify(unify.Inputs{
		Doris: record.Record{"propertyId": "PROP-1", "propType": "", "districtName": "Pune"},
		Dlr:   record.Record{"landUse": "Agricultural", "districtName": "Pune City"},
	})
	require.NoError(t, err)

	key := func(path string) string {
		return provenance.MakeKey(types.ResourceTypeProperty, "PROP-1", path)
	}

	pt := res.Provenance[key("property.propertyType")]
	require.Len(t, pt, 1)
	assert.Equal(t, types.DLR, pt[0].Source)
	assert.Equal(t, provenance.ReasonFallback, pt[0].Reason)
	assert.Len(t, pt[0].Candidates, 2)
	assert.Equal(t, fixedNow, pt[0].Timestamp)

	district := res.Provenance[key("property.district")]
	require.Len(t, district, 1)
	assert.Equal(t, types.DORIS, district[0].Source)
	assert.Equal(t, provenance.ReasonAuthority, district[0].Reason)

	sro := res.Provenance[key("property.sro")]
	require.Len(t, sro, 1)
	assert.Equal(t, provenance.ReasonDefault, sro[0].Reason)

	assert.Equal(t, provenance.ReasonDerived, res.Provenance[key("property.stateName")][0].Reason)
	assert.NotContains(t, res.Provenance, key("owner.name"), "owner leaves resolve only when doris has data")
	assert.Contains(t, res.Provenance, key("propertyId"))

	report := res.Report()
	require.Contains(t, report.Resources, "property:PROP-1")
	assert.Len(t, report.Resources["property:PROP-1"].Fields["property.district"].Conflicts, 1)
}

func TestInputsFrom(t *testing.T) {
	in := unify.InputsFrom("PROP-9", map[types.SourceID]record.Record{
		types.DLR:           {"khasraNo": "1"},
		types.SourceID("x"): {"a": 1},
	})
	assert.Equal(t, "PROP-9", in.PropertyID)
	assert.NotNil(t, in.Get(types.DLR))
	assert.Nil(t, in.Get(types.DORIS))
	assert.Nil(t, in.Get(types.SourceID("x")))
}

func TestIsMortgaged(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{true, true},
		{false, false},
		{"Yes", true},
		{" mortgaged ", true},
		{"No", false},
		{normalize.NoData, false},
		{1, true},
		{0, false},
		{2.5, true},
		{nil, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, unify.IsMortgaged(tt.in), "%v", tt.in)
	}
}

func TestUnmappedWarningUsesUnifierLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)
	u := unify.New(unify.WithLogger(tl.Logger))

	_, err := u.CreateUnifiedData(unify.Inputs{Doris: dorisRecord()})
	require.NoError(t, err)
	tl.AssertContains(t, "Unified property")
	tl.AssertNotContains(t, "No field mapping")
}
