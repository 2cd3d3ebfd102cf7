package fieldmap

import "github.com/agentstation/propverify/pkg/types"

// DefaultTables returns the native to canonical field tables of the four registries.
func DefaultTables() map[types.SourceID]Table {
	return map[types.SourceID]Table{
		types.DORIS:  dorisTable(),
		types.DLR:    dlrTable(),
		types.CERSAI: cersaiTable(),
		types.MCA21:  mca21Table(),
	}
}

// dorisTable covers the sale deed registration record, the land parcel it
// describes and its executant.
func dorisTable() Table {
	return Table{
		"registrationNo":      "registrationNumber",
		"regDate":             "registrationDate",
		"sroName":             "sro",
		"propType":            "propertyType",
		"plotArea":            "areaSize",
		"propAddress":         "propertyAddress",
		"stateCd":             "stateCode",
		"districtName":        "district",
		"khasraNo":            "khasraNumber",
		"khataNo":             "khataNumber",
		"surveyNo":            "surveyNumber",
		"plotNo":              "plotNumber",
		"tehsilName":          "tehsil",
		"villageName":         "village",
		"fatherOrHusbandName": "fatherHusbandName",
		"ownerGender":         "gender",
		"ownerBirthDate":      "dateOfBirth",
		"aadhaarNo":           "aadhaarNumber",
		"mobileNo":            "mobileNumber",
		"emailId":             "email",
	}
}

// dlrTable covers the record of rights: khasra/khata numbers and mutation history.
func dlrTable() Table {
	return Table{
		"khasraNo":         "khasraNumber",
		"khataNo":          "khataNumber",
		"surveyNo":         "surveyNumber",
		"plotNo":           "plotNumber",
		"landUse":          "propertyType",
		"landArea":         "areaSize",
		"landAddress":      "propertyAddress",
		"stateCd":          "stateCode",
		"districtName":     "district",
		"tehsilName":       "tehsil",
		"villageName":      "village",
		"mutationState":    "mutationStatus",
		"recordUpdateDate": "lastUpdatedDate",
		"registrationNo":   "registrationNumber",
		"regDate":          "registrationDate",
		"sroName":          "sro",
	}
}

// cersaiTable covers security interests registered against the property.
func cersaiTable() Table {
	return Table{
		"mortgageStatus":     "isMortgaged",
		"lenderName":         "bankName",
		"loanAmt":            "loanAmount",
		"loanAcctNo":         "loanAccountNumber",
		"facilityType":       "loanType",
		"securityInterestId": "chargeId",
		"siType":             "chargeType",
		"siCreationDate":     "chargeCreationDate",
		"siAmount":           "chargeAmount",
		"siStatus":           "chargeStatus",
	}
}

// mca21Table covers the company master data of a corporate owner.
func mca21Table() Table {
	return Table{
		"CIN":                     "cin",
		"companyCategory":         "companyType",
		"dateOfIncorporation":     "incorporationDate",
		"registeredOfficeAddress": "registeredAddress",
		"authorisedCapital":       "authorizedCapital",
		"directorNames":           "directors",
	}
}
