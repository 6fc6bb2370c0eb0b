package shapers

import (
	"certforge/internal/canonical"
	"certforge/internal/domain"
)

func Header(rec canonical.Record) domain.CertificateHeader {
	ns := domain.NotSpecified
	return domain.CertificateHeader{
		CertificateNumber: rec.String(ns, "certificateNumber", "certificateNo", "reportNumber", "certificate.number", "certificateId", "id"),
		Reference:         rec.String(ns, "reference", "jobReference", "jobRef", "certificateReference"),
		IssueDate:         normalizeDate(rec.String("", "issueDate", "dateOfIssue", "inspectionDate", "dateOfInspection"), ns),
	}
}

func Supply(rec canonical.Record) domain.SupplyCharacteristics {
	ns := domain.NotSpecified
	return domain.SupplyCharacteristics{
		EarthingArrangement:     rec.String(ns, "earthingArrangement", "supply.earthingArrangement", "supplyCharacteristics.earthingArrangement", "earthingSystem"),
		LiveConductors:          rec.String(ns, "liveConductors", "supply.liveConductors", "supplyCharacteristics.liveConductors", "conductorConfiguration"),
		NominalVoltage:          rec.WithUnit(canonical.UnitVolts, ns, "nominalVoltage", "supply.nominalVoltage", "supplyCharacteristics.nominalVoltage", "voltage"),
		NominalFrequency:        rec.WithUnit(canonical.UnitHertz, ns, "nominalFrequency", "supply.nominalFrequency", "supplyCharacteristics.nominalFrequency", "frequency"),
		ProspectiveFaultCurrent: rec.WithUnit(canonical.UnitKiloAmps, ns, "prospectiveFaultCurrent", "pfc", "supply.pfc", "supplyCharacteristics.prospectiveFaultCurrent"),
		Ze:                      rec.WithUnit(canonical.UnitOhms, ns, "ze", "externalLoopImpedance", "supply.ze", "supplyCharacteristics.ze"),
		SupplyDeviceType:        rec.String(ns, "supplyProtectiveDeviceType", "supplyDeviceBsEn", "mainFuseType", "supply.deviceType"),
		SupplyDeviceRating:      rec.WithUnit(canonical.UnitAmps, ns, "supplyProtectiveDeviceRating", "supplyDeviceRating", "mainFuseRating", "supply.deviceRating"),
		MainSwitchRating:        rec.WithUnit(canonical.UnitAmps, ns, "mainSwitchRating", "mainSwitch.rating", "mainSwitchCurrentRating"),
		EarthingConductorSize:   rec.WithUnit(canonical.UnitSquareMM, ns, "mainEarthingConductorSize", "earthingConductorSize", "earthingConductor.size"),
		MainBondingSize:         rec.WithUnit(canonical.UnitSquareMM, ns, "mainBondingSize", "mainProtectiveBondingSize", "bondingConductorSize", "mainBonding.size"),
		EarthElectrodeRa:        rec.WithUnit(canonical.UnitOhms, domain.NotApplicable, "earthElectrodeResistance", "ra", "earthElectrode.resistance"),
	}
}

func Installation(rec canonical.Record) domain.InstallationDetails {
	ns := domain.NotSpecified
	return domain.InstallationDetails{
		Address:               rec.String(ns, "installationAddress", "propertyAddress", "installation.address", "premisesAddress", "address"),
		PremisesType:          rec.String(ns, "premisesDescription", "premisesType", "installation.type", "typeOfPremises", "descriptionOfPremises"),
		EstimatedAge:          rec.String(ns, "estimatedAge", "ageOfInstallation", "installationAge", "installation.age"),
		EvidenceOfAlterations: rec.String(ns, "evidenceOfAlterations", "alterations", "evidenceOfAdditions"),
		RecordsAvailable:      rec.String(ns, "recordsAvailable", "installationRecordsAvailable"),
		PurposeOfReport:       rec.String(ns, "purposeOfReport", "purpose", "reasonForReport", "purposeOfInspection"),
		ExtentOfInspection:    rec.String(ns, "extentOfInspection", "extentAndLimitations", "extent"),
		Limitations:           rec.String(domain.None, "limitations", "agreedLimitations", "operationalLimitations"),
		InspectionDate:        normalizeDate(rec.String("", "inspectionDate", "dateOfInspection", "date"), ns),
		NextInspectionDate:    normalizeDate(rec.String("", "nextInspectionDate", "recommendedRetestDate", "nextInspection"), ns),
	}
}

const (
	AssessmentSatisfactory   = "SATISFACTORY"
	AssessmentUnsatisfactory = "UNSATISFACTORY"
)

// DeclarationFor shapes the declaration. Any C1, C2 or FI observation makes
// the overall assessment unsatisfactory regardless of what was recorded.
func DeclarationFor(rec canonical.Record, observations []domain.Observation) domain.Declaration {
	ns := domain.NotSpecified
	assessment := rec.String(AssessmentSatisfactory, "overallAssessment", "overallCondition", "installationSatisfactory")
	switch assessment {
	case "Yes", "satisfactory", "Satisfactory":
		assessment = AssessmentSatisfactory
	case "No", "unsatisfactory", "Unsatisfactory":
		assessment = AssessmentUnsatisfactory
	}
	for _, o := range observations {
		if o.RectificationRequired {
			assessment = AssessmentUnsatisfactory
			break
		}
	}
	return domain.Declaration{
		ReviewerName:          rec.String(ns, "qualifiedSupervisor", "reviewerName", "authorisedBy", "declaration.reviewerName"),
		ReviewerPosition:      rec.String(ns, "reviewerPosition", "supervisorPosition", "declaration.reviewerPosition"),
		ReviewerSignaturePath: rec.String("", "reviewerSignature", "supervisorSignature", "signatures.reviewer"),
		ReviewDate:            normalizeDate(rec.String("", "reviewDate", "authorisedDate", "declaration.reviewDate"), ns),
		OverallAssessment:     assessment,
		SummaryOfCondition:    rec.String(ns, "summaryOfCondition", "generalCondition", "conditionSummary"),
		RetestInterval:        rec.String(domain.NotApplicable, "nextInspectionInterval", "retestInterval", "recommendedInterval"),
	}
}
