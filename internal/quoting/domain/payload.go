package domain

// YesNo is the two-value encoding the quoting API expects for every
// boolean-like attribute. The zero value is omitted from optional fields.
type YesNo string

const (
	Yes YesNo = "Y"
	No  YesNo = "N"
)

// YesNoOf converts a boolean.
func YesNoOf(b bool) YesNo {
	if b {
		return Yes
	}
	return No
}

// Relation values for RegularDriver.RelationToPolicyHolder.
const (
	RelationSelf  = "Self"
	RelationOther = "Other"
)

// QuotePayload is the request body for the quoting API.
type QuotePayload struct {
	AgentBranch         string    `json:"agentBranch,omitempty"`
	AgentEmail          string    `json:"agentEmail,omitempty"`
	ExternalReferenceID string    `json:"externalReferenceId"`
	Source              string    `json:"source"`
	Applicant           Applicant `json:"applicant"`
	Vehicles            []Vehicle `json:"vehicles"`
}

// Applicant is the policyholder's identity.
type Applicant struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	IDNumber     string `json:"idNumber"`
}

// Address is a rated overnight location.
type Address struct {
	AddressLine string  `json:"addressLine"`
	Suburb      string  `json:"suburb"`
	PostalCode  int     `json:"postalCode"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// RegularDriver is the person who usually drives a vehicle.
type RegularDriver struct {
	CurrentlyInsured       YesNo  `json:"currentlyInsured"`
	DateOfBirth            string `json:"dateOfBirth"`
	EmailAddress           string `json:"emailAddress,omitempty"`
	IDNumber               string `json:"idNumber,omitempty"`
	LicenseIssueDate       string `json:"licenseIssueDate,omitempty"`
	MaritalStatus          string `json:"maritalStatus,omitempty"`
	MobileNumber           string `json:"mobileNumber,omitempty"`
	PrvInsLosses           int    `json:"prvInsLosses"`
	RelationToPolicyHolder string `json:"relationToPolicyHolder"`
	YearsWithoutClaims     int    `json:"yearsWithoutClaims"`
}

// Claim is one prior insurance claim on a vehicle.
type Claim struct {
	Amount       int    `json:"amount"`
	Description  string `json:"description,omitempty"`
	IncidentYear int    `json:"incidentYear,omitempty"`
	WasRejected  YesNo  `json:"wasRejected"`
}

// Vehicle holds one vehicle's rating attributes.
type Vehicle struct {
	Accessories               YesNo         `json:"accessories"`
	AccessoriesAmount         int           `json:"accessoriesAmount,omitempty"`
	AccessControl             YesNo         `json:"accessControl,omitempty"`
	Address                   Address       `json:"address"`
	Category                  string        `json:"category,omitempty"`
	Colour                    string        `json:"colour,omitempty"`
	CoverCode                 string        `json:"coverCode,omitempty"`
	EngineSize                float64       `json:"engineSize,omitempty"`
	Financed                  YesNo         `json:"financed"`
	InsuredValueType          string        `json:"insuredValueType,omitempty"`
	Make                      string        `json:"make"`
	MarketValue               int           `json:"marketValue"`
	MMCode                    string        `json:"mmCode,omitempty"`
	Model                     string        `json:"model"`
	Modified                  YesNo         `json:"modified"`
	OvernightParkingSituation string        `json:"overnightParkingSituation,omitempty"`
	Owner                     YesNo         `json:"owner"`
	PartyIsRegularDriver      YesNo         `json:"partyIsRegularDriver"`
	RegularDriver             RegularDriver `json:"regularDriver"`
	RetailValue               int           `json:"retailValue"`
	SecurityGuard             YesNo         `json:"securityGuard,omitempty"`
	Status                    string        `json:"status,omitempty"`
	TrackingDevice            YesNo         `json:"trackingDevice,omitempty"`
	UseType                   string        `json:"useType,omitempty"`
	Year                      int           `json:"year"`
	Claims                    []Claim       `json:"claims,omitempty"`
}
