package shapers

import (
	"regexp"

	"certforge/internal/canonical"
	"certforge/internal/domain"
)

func Client(rec canonical.Record) domain.ClientInfo {
	ns := domain.NotSpecified
	return domain.ClientInfo{
		Name:    rec.String(ns, "clientName", "client.name", "clientDetails.name", "customerName", "client"),
		Address: rec.String(ns, "clientAddress", "client.address", "clientDetails.address", "customerAddress"),
		Phone:   rec.String(ns, "clientPhone", "client.phone", "clientDetails.phone", "customerPhone"),
		Email:   rec.String(ns, "clientEmail", "client.email", "clientDetails.email", "customerEmail"),
	}
}

func Inspector(rec canonical.Record) domain.InspectorInfo {
	ns := domain.NotSpecified
	return domain.InspectorInfo{
		Name:          rec.String(ns, "inspectorName", "inspector.name", "inspectorDetails.name", "engineerName", "signedBy"),
		Company:       rec.String(ns, "inspectorCompany", "inspector.company", "companyName", "company.name"),
		Position:      rec.String(ns, "inspectorPosition", "inspector.position", "position"),
		Registration:  rec.String(ns, "inspectorRegistration", "inspector.registrationNumber", "registrationNumber", "schemeNumber"),
		Phone:         rec.String(ns, "inspectorPhone", "inspector.phone", "companyPhone"),
		Email:         rec.String(ns, "inspectorEmail", "inspector.email", "companyEmail"),
		SignaturePath: rec.String("", "inspectorSignature", "inspector.signature", "signatures.inspector", "signature"),
		SignedDate:    normalizeDate(rec.String("", "inspectorSignatureDate", "signatures.inspectorDate", "inspectionDate"), ns),
	}
}

const defaultBrandColor = "#1F3A5F"

var hexColor = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// Branding resolves company branding from the record first and the stored
// company profile second.
func Branding(rec, profile canonical.Record) domain.CompanyBranding {
	src := canonical.Record{"r": map[string]any(rec), "p": map[string]any(profile)}
	ns := domain.NotSpecified
	b := domain.CompanyBranding{
		Name:               src.String(ns, "r.companyBranding.name", "r.branding.companyName", "r.companyName", "r.company.name", "p.company_name", "p.name"),
		Address:            src.String(ns, "r.companyBranding.address", "r.branding.companyAddress", "r.companyAddress", "r.company.address", "p.address"),
		Phone:              src.String(ns, "r.companyBranding.phone", "r.branding.companyPhone", "r.companyPhone", "r.company.phone", "p.phone"),
		Email:              src.String(ns, "r.companyBranding.email", "r.branding.companyEmail", "r.companyEmail", "r.company.email", "p.email"),
		Website:            src.String(ns, "r.companyBranding.website", "r.branding.website", "r.companyWebsite", "r.company.website", "p.website"),
		RegistrationNumber: src.String(ns, "r.companyBranding.registrationNumber", "r.branding.registrationNumber", "r.companyRegistration", "p.registration_number"),
		SchemeName:         src.String(ns, "r.companyBranding.scheme", "r.branding.schemeName", "r.schemeName", "r.registrationScheme", "p.scheme_name"),
		LogoPath:           src.String("", "r.companyBranding.logo", "r.branding.logoUrl", "r.companyLogo", "r.company.logo", "p.logo_path"),
		PrimaryColor:       src.String(defaultBrandColor, "r.companyBranding.primaryColor", "r.branding.primaryColor", "r.brandColor", "p.primary_color"),
	}
	if !hexColor.MatchString(b.PrimaryColor) {
		b.PrimaryColor = defaultBrandColor
	}
	if b.PrimaryColor[0] != '#' {
		b.PrimaryColor = "#" + b.PrimaryColor
	}
	return b
}
