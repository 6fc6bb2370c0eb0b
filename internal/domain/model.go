package domain

// Shaped entities. Every string field is always populated after shaping,
// either with a resolved value or a placeholder. Fields whose name ends in
// Path are asset references and stay empty when no asset exists.

const (
	NotSpecified  = "Not specified"
	NotApplicable = "N/A"
	None          = "None"
	NotVerified   = "N/V"
	Limitation    = "LIM"
	Acceptable    = "✓"
	Unacceptable  = "✗"
)

// CertificateTypeTag is the filename tag for electrical installation condition reports.
const CertificateTypeTag = "EICR"

type CertificateHeader struct {
	CertificateNumber string
	Reference         string
	IssueDate         string
}

type ClientInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

type InspectorInfo struct {
	Name          string
	Company       string
	Position      string
	Registration  string
	Phone         string
	Email         string
	SignaturePath string
	SignedDate    string
}

type CompanyBranding struct {
	Name               string
	Address            string
	Phone              string
	Email              string
	Website            string
	RegistrationNumber string
	SchemeName         string
	LogoPath           string
	PrimaryColor       string
}

type SupplyCharacteristics struct {
	EarthingArrangement     string
	LiveConductors          string
	NominalVoltage          string
	NominalFrequency        string
	ProspectiveFaultCurrent string
	Ze                      string
	SupplyDeviceType        string
	SupplyDeviceRating      string
	MainSwitchRating        string
	EarthingConductorSize   string
	MainBondingSize         string
	EarthElectrodeRa        string
}

type InstallationDetails struct {
	Address               string
	PremisesType          string
	EstimatedAge          string
	EvidenceOfAlterations string
	RecordsAvailable      string
	PurposeOfReport       string
	ExtentOfInspection    string
	Limitations           string
	InspectionDate        string
	NextInspectionDate    string
}

type Declaration struct {
	ReviewerName          string
	ReviewerPosition      string
	ReviewerSignaturePath string
	ReviewDate            string
	OverallAssessment     string
	SummaryOfCondition    string
	RetestInterval        string
}

type Circuit struct {
	Number           string
	Description      string
	TypeOfWiring     string
	ReferenceMethod  string
	Points           string
	LiveSize         string
	CPCSize          string
	DeviceStandard   string
	DeviceType       string
	Rating           string
	BreakingCapacity string
	RCDType          string
	RCDRating        string
	MaxZs            string
	// Synthesized rows come from a circuit count hint, not from recorded data.
	Synthesized bool
}

type TestResult struct {
	CircuitNumber       string
	Description         string
	R1R2                string
	R2                  string
	RingR1              string
	RingRn              string
	RingR2              string
	InsulationLiveLive  string
	InsulationLiveEarth string
	TestVoltage         string
	Polarity            string
	Zs                  string
	RCDTime             string
	RCDTestButton       string
	AFDDTest            string
	Remarks             string
	Synthesized         bool
}

type Observation struct {
	// ID is the recorded identifier and the photo lookup key; empty when none was recorded.
	ID                    string
	ItemNumber            string
	Description           string
	Code                  Severity
	CodeDescription       string
	Urgency               string
	RectificationRequired bool
	Location              string
	Recommendation        string
	Regulation            string
}

type InspectionItem struct {
	Section     string
	Number      string
	Description string
	// Outcome is one of ✓, ✗, C1, C2, C3, FI, N/V, LIM, N/A.
	Outcome string
	Notes   string
}

// Certificate is the fully shaped, typed form of one RawRecord.
type Certificate struct {
	Header          CertificateHeader
	Client          ClientInfo
	Inspector       InspectorInfo
	Branding        CompanyBranding
	Supply          SupplyCharacteristics
	Installation    InstallationDetails
	Declaration     Declaration
	Circuits        []Circuit
	TestResults     []TestResult
	Observations    []Observation
	InspectionItems []InspectionItem
}

// DocumentID is the certificate number, or the reference when no number was recorded.
func (c Certificate) DocumentID() string {
	if !IsPlaceholder(c.Header.CertificateNumber) {
		return c.Header.CertificateNumber
	}
	if !IsPlaceholder(c.Header.Reference) {
		return c.Header.Reference
	}
	return NotSpecified
}

// IsPlaceholder reports whether s is empty or one of the default literals.
func IsPlaceholder(s string) bool {
	switch s {
	case "", NotSpecified, NotApplicable, None, NotVerified:
		return true
	}
	return false
}

func anyPopulated(fields ...string) bool {
	for _, f := range fields {
		if !IsPlaceholder(f) {
			return true
		}
	}
	return false
}

// Populated reports whether any content field carries recorded data.

func (c ClientInfo) Populated() bool { return anyPopulated(c.Name, c.Address, c.Phone, c.Email) }

func (i InspectorInfo) Populated() bool {
	return anyPopulated(i.Name, i.Company, i.Position, i.Registration, i.Phone, i.Email, i.SignaturePath)
}

func (b CompanyBranding) Populated() bool {
	return anyPopulated(b.Name, b.Address, b.Phone, b.Email, b.Website, b.RegistrationNumber, b.SchemeName, b.LogoPath)
}

func (s SupplyCharacteristics) Populated() bool {
	return anyPopulated(s.EarthingArrangement, s.LiveConductors, s.NominalVoltage, s.NominalFrequency,
		s.ProspectiveFaultCurrent, s.Ze, s.SupplyDeviceType, s.SupplyDeviceRating, s.MainSwitchRating,
		s.EarthingConductorSize, s.MainBondingSize, s.EarthElectrodeRa)
}

func (d InstallationDetails) Populated() bool {
	return anyPopulated(d.Address, d.PremisesType, d.EstimatedAge, d.EvidenceOfAlterations, d.RecordsAvailable,
		d.PurposeOfReport, d.ExtentOfInspection, d.Limitations, d.InspectionDate, d.NextInspectionDate)
}

// Populated ignores the derived overall assessment.
func (d Declaration) Populated() bool {
	return anyPopulated(d.ReviewerName, d.ReviewerPosition, d.ReviewerSignaturePath, d.ReviewDate,
		d.SummaryOfCondition, d.RetestInterval)
}

func (c Circuit) Populated() bool {
	if c.Synthesized {
		return false
	}
	return anyPopulated(c.TypeOfWiring, c.ReferenceMethod, c.Points, c.LiveSize, c.CPCSize, c.DeviceStandard,
		c.DeviceType, c.Rating, c.BreakingCapacity, c.RCDType, c.RCDRating, c.MaxZs)
}

// HasReadings reports whether at least one measured value was recorded.
func (t TestResult) HasReadings() bool {
	if t.Synthesized {
		return false
	}
	return anyPopulated(t.R1R2, t.R2, t.RingR1, t.RingRn, t.RingR2, t.InsulationLiveLive, t.InsulationLiveEarth,
		t.Polarity, t.Zs, t.RCDTime, t.RCDTestButton, t.AFDDTest)
}

func (t TestResult) Populated() bool { return t.HasReadings() }

func (o Observation) Populated() bool {
	return anyPopulated(o.Description, o.Location, o.Recommendation, o.Regulation)
}

func (i InspectionItem) Populated() bool {
	return anyPopulated(i.Description, i.Notes) || (i.Outcome != NotVerified && i.Outcome != "")
}
