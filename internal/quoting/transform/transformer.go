// Package transform converts a questionnaire response into the payload the
// quoting API accepts. Transform is pure apart from logging: the clock and
// random source are injected.
package transform

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"quote_portal_backend/internal/quoting/domain"
	"quote_portal_backend/platform/apperr"
	"quote_portal_backend/platform/logger"
	"quote_portal_backend/platform/phone"
)

// DefaultSource is the payload "source" when none is configured.
const DefaultSource = "SureStrat"

// Fallback coordinates used when the form carries no geocode.
const (
	fallbackLatitude  = -26.10757
	fallbackLongitude = 28.0567
)

const customAddress = "custom"

// Transformer turns questionnaires into quote payloads.
type Transformer struct {
	source string
	now    func() time.Time
	mu     sync.Mutex
	rng    *rand.Rand
	log    *logger.Logger
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithClock overrides the clock used for reference IDs.
func WithClock(now func() time.Time) Option {
	return func(t *Transformer) { t.now = now }
}

// WithRand overrides the random source used for reference IDs.
func WithRand(rng *rand.Rand) Option {
	return func(t *Transformer) { t.rng = rng }
}

// WithSource overrides the payload source tag.
func WithSource(source string) Option {
	return func(t *Transformer) {
		if source != "" {
			t.source = source
		}
	}
}

// New creates a Transformer.
func New(log *logger.Logger, opts ...Option) *Transformer {
	t := &Transformer{
		source: DefaultSource,
		now:    time.Now,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log:    log,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform builds a payload from q. Missing structural fields yield a
// KindTransform error listing every offending field; nothing is defaulted.
func (t *Transformer) Transform(q domain.Questionnaire) (*domain.QuotePayload, error) {
	if missing := requiredFields(q); len(missing) > 0 {
		t.log.Warn("questionnaire rejected", "missing_fields", len(missing))
		return nil, apperr.Transform("questionnaire is missing required fields", missing...).WithOp("transform")
	}

	applicant := domain.Applicant{
		FirstName:    q.String("firstName"),
		LastName:     q.String("lastName"),
		Email:        q.String("email"),
		MobileNumber: phone.NormalizeE164(q.String("mobileNumber")),
		IDNumber:     q.String("idNumber"),
	}

	groups := q.Groups("vehicles")
	vehicles := make([]domain.Vehicle, 0, len(groups))
	for _, v := range groups {
		vehicles = append(vehicles, t.vehicle(q, v, applicant))
	}

	payload := &domain.QuotePayload{
		AgentBranch:         q.String("agentBranch"),
		AgentEmail:          q.String("agentEmail"),
		ExternalReferenceID: t.referenceID(),
		Source:              t.source,
		Applicant:           applicant,
		Vehicles:            vehicles,
	}

	t.log.Debug("questionnaire transformed", "reference_id", payload.ExternalReferenceID, "vehicles", len(vehicles))
	return payload, nil
}

func (t *Transformer) referenceID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return NewReferenceID(t.now(), t.rng)
}

func requiredFields(q domain.Questionnaire) []apperr.FieldError {
	var missing []apperr.FieldError
	for _, key := range []string{"firstName", "lastName", "email", "idNumber", "mobileNumber"} {
		if q.String(key) == "" {
			missing = append(missing, apperr.FieldError{Field: key, Message: "is required"})
		}
	}

	vehicles := q.Groups("vehicles")
	if len(vehicles) == 0 {
		missing = append(missing, apperr.FieldError{Field: "vehicles", Message: "at least one vehicle is required"})
	}
	for i, v := range vehicles {
		for _, key := range []string{"v_make", "v_model", "v_year"} {
			if v.String(key) == "" {
				missing = append(missing, apperr.FieldError{
					Field:   fmt.Sprintf("vehicles -> %d -> %s", i, key),
					Message: "is required",
				})
			}
		}
	}
	return missing
}

func (t *Transformer) vehicle(q, v domain.Questionnaire, applicant domain.Applicant) domain.Vehicle {
	retail := v.Int("v_retailValue", 0)
	status := v.String("v_status")
	if status == "SecondHand" {
		status = "Used"
	}

	out := domain.Vehicle{
		Accessories:               domain.YesNoOf(v.Bool("v_accessories")),
		Address:                   overnightAddress(q, v),
		Category:                  v.String("v_category"),
		Colour:                    v.String("v_colour"),
		CoverCode:                 v.String("v_coverCode"),
		EngineSize:                v.Float("v_engineSize", 0),
		Financed:                  domain.YesNoOf(v.Bool("v_financed")),
		InsuredValueType:          v.String("v_insuredValueType"),
		Make:                      v.String("v_make"),
		MarketValue:               retail,
		MMCode:                    v.String("v_mmCode"),
		Model:                     v.String("v_model"),
		Modified:                  domain.YesNoOf(v.Bool("v_modified")),
		OvernightParkingSituation: v.String("v_overnightParkingSituation"),
		Owner:                     domain.YesNoOf(v.Bool("v_owner_isOwnerPolicyholder")),
		PartyIsRegularDriver:      domain.YesNoOf(v.Bool("v_driver_isDriverPolicyholder")),
		RegularDriver:             regularDriver(v, applicant),
		RetailValue:               retail,
		Status:                    status,
		UseType:                   v.String("v_useType"),
		Year:                      v.Int("v_year", 0),
		Claims:                    claims(v),
	}

	if v.Bool("v_accessories") {
		out.AccessoriesAmount = v.Int("v_accessoriesAmount", 0)
	}
	if v.Has("v_accessControl") {
		out.AccessControl = domain.YesNoOf(v.Bool("v_accessControl"))
	}
	if v.Has("v_securityGuard") {
		out.SecurityGuard = domain.YesNoOf(v.Bool("v_securityGuard"))
	}
	if v.Has("v_trackingDevice") {
		out.TrackingDevice = domain.YesNoOf(v.Bool("v_trackingDevice"))
	}
	return out
}

// overnightAddress picks the vehicle-specific address when the vehicle opts
// out of the main address; each vehicle field falls back to the main one.
func overnightAddress(q, v domain.Questionnaire) domain.Address {
	src, prefix := q, "address_"
	if v.String("v_useMainAddress") == customAddress {
		src, prefix = v, "v_addr_"
	}

	pick := func(field string) string {
		if s := src.String(prefix + field); s != "" {
			return s
		}
		return q.String("address_" + field)
	}
	pickFloat := func(field string, fallback float64) float64 {
		if src.Has(prefix + field) {
			return src.Float(prefix+field, q.Float("address_"+field, fallback))
		}
		return q.Float("address_"+field, fallback)
	}

	return domain.Address{
		AddressLine: pick("addressLine"),
		Suburb:      pick("suburb"),
		PostalCode:  int(pickFloat("postalCode", 0)),
		Latitude:    pickFloat("latitude", fallbackLatitude),
		Longitude:   pickFloat("longitude", fallbackLongitude),
	}
}

// regularDriver resolves driver identity: the policyholder's own details when
// the driver is the policyholder, otherwise the driver sub-record.
func regularDriver(v domain.Questionnaire, applicant domain.Applicant) domain.RegularDriver {
	d := domain.RegularDriver{
		CurrentlyInsured:   domain.YesNoOf(v.Bool("v_driver_currentlyInsured")),
		LicenseIssueDate:   v.String("v_driver_licenseIssueDate"),
		MaritalStatus:      v.String("v_driver_maritalStatus"),
		PrvInsLosses:       v.Int("v_driver_prvInsLosses", 0),
		YearsWithoutClaims: v.Int("v_driver_yearsWithoutClaims", 0),
	}

	if v.Bool("v_driver_isDriverPolicyholder") {
		d.RelationToPolicyHolder = domain.RelationSelf
		d.EmailAddress = applicant.Email
		d.IDNumber = applicant.IDNumber
		d.MobileNumber = applicant.MobileNumber
		d.DateOfBirth = policyholderDOB(applicant.IDNumber, v.String("v_driver_dateOfBirth"))
		return d
	}

	d.RelationToPolicyHolder = domain.RelationOther
	d.EmailAddress = v.String("v_driver_emailAddress")
	d.IDNumber = v.String("v_driver_idNumber")
	d.MobileNumber = phone.NormalizeE164(v.String("v_driver_mobileNumber"))
	d.DateOfBirth = v.String("v_driver_dateOfBirth")
	if d.DateOfBirth == "" {
		d.DateOfBirth = DeriveDateOfBirth(d.IDNumber)
	}
	return d
}

func policyholderDOB(idNumber, explicit string) string {
	if dob, ok := DateOfBirthFromID(idNumber); ok {
		return dob
	}
	if explicit != "" {
		return explicit
	}
	return UnknownDateOfBirth
}

func claims(v domain.Questionnaire) []domain.Claim {
	groups := v.Groups("v_claims")
	if len(groups) == 0 {
		return nil
	}
	out := make([]domain.Claim, 0, len(groups))
	for _, c := range groups {
		out = append(out, domain.Claim{
			Amount:       c.Int("v_claim_amount", 0),
			Description:  c.String("v_claim_description"),
			IncidentYear: c.Int("v_claim_incidentYear", 0),
			WasRejected:  domain.YesNoOf(c.Bool("v_claim_wasRejected")),
		})
	}
	return out
}
