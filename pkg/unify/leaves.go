package unify

// leaf binds a path in the unified record to the canonical field it is read from.
type leaf struct {
	path  string
	field string
}

var detailLeaves = []leaf{
	{"property.registrationNumber", "registrationNumber"},
	{"property.registrationDate", "registrationDate"},
	{"property.sro", "sro"},
	{"property.khasraNumber", "khasraNumber"},
	{"property.khataNumber", "khataNumber"},
	{"property.surveyNumber", "surveyNumber"},
	{"property.plotNumber", "plotNumber"},
	{"property.propertyType", "propertyType"},
	{"property.areaSize", "areaSize"},
	{"property.propertyAddress", "propertyAddress"},
	{"property.stateCode", "stateCode"},
	{"property.district", "district"},
	{"property.tehsil", "tehsil"},
	{"property.village", "village"},
	{"property.mutationStatus", "mutationStatus"},
	{"property.mutationDate", "mutationDate"},
	{"property.lastUpdatedDate", "lastUpdatedDate"},
}

var ownerLeaves = []leaf{
	{"owner.name", "ownerName"},
	{"owner.fatherHusbandName", "fatherHusbandName"},
	{"owner.gender", "gender"},
	{"owner.dateOfBirth", "dateOfBirth"},
	{"owner.contactInfo.aadhaarNumber", "aadhaarNumber"},
	{"owner.contactInfo.mobileNumber", "mobileNumber"},
	{"owner.contactInfo.email", "email"},
	{"owner.address", "ownerAddress"},
}

var loanLeaves = []leaf{
	{"encumbrance.loanDetails.bankName", "bankName"},
	{"encumbrance.loanDetails.loanAmount", "loanAmount"},
	{"encumbrance.loanDetails.loanAccountNumber", "loanAccountNumber"},
	{"encumbrance.loanDetails.loanType", "loanType"},
	{"encumbrance.loanDetails.sanctionDate", "sanctionDate"},
	{"encumbrance.loanDetails.loanStatus", "loanStatus"},
}

var chargeLeaves = []leaf{
	{"encumbrance.chargeDetails.chargeId", "chargeId"},
	{"encumbrance.chargeDetails.chargeType", "chargeType"},
	{"encumbrance.chargeDetails.chargeHolder", "chargeHolder"},
	{"encumbrance.chargeDetails.chargeCreationDate", "chargeCreationDate"},
	{"encumbrance.chargeDetails.chargeAmount", "chargeAmount"},
	{"encumbrance.chargeDetails.chargeStatus", "chargeStatus"},
}

var companyLeaves = []leaf{
	{"companyDetails.cin", "cin"},
	{"companyDetails.companyName", "companyName"},
	{"companyDetails.companyType", "companyType"},
	{"companyDetails.companyStatus", "companyStatus"},
	{"companyDetails.incorporationDate", "incorporationDate"},
	{"companyDetails.registeredAddress", "registeredAddress"},
	{"companyDetails.authorizedCapital", "authorizedCapital"},
	{"companyDetails.paidUpCapital", "paidUpCapital"},
	{"companyDetails.rocCode", "rocCode"},
	{"companyDetails.directors", "directors"},
}
