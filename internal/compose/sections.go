package compose

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"certforge/internal/domain"
	"certforge/internal/layout"
	"certforge/internal/logger"
	"certforge/internal/shapers"
)

const (
	photoMaxH = 70.0
	logoMaxW  = 60.0
	logoMaxH  = 22.0
)

// writer lays out one certificate. It lives for a single run.
type writer struct {
	ctx      context.Context
	engine   *layout.Engine
	cert     domain.Certificate
	opts     domain.Options
	src      PhotoSource
	log      logger.Logger
	progress func(float64)
	limit    int
	skipped  []string
}

type section struct {
	name string
	draw func() error
}

func (w *writer) run() error {
	if c, ok := layout.ParseHex(w.cert.Branding.PrimaryColor); ok {
		w.engine.SetAccent(c)
	}
	sections := []section{
		{"header", w.header},
		{"client", w.clientAndScope},
		{"installation", w.supplyAndInstallation},
		{"schedule", w.schedule},
		{"checklist", w.checklist},
		{"observations", w.observations},
		{"declaration", w.declaration},
	}
	for i, s := range sections {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		if err := s.draw(); err != nil {
			return fmt.Errorf("compose: %s: %w", s.name, err)
		}
		w.report(float64(i+1) / float64(len(sections)+1))
	}
	return nil
}

func (w *writer) report(f float64) {
	if w.progress != nil {
		w.progress(f)
	}
}

// soft absorbs a failed block: it is logged and noted on the artifact.
func (w *writer) soft(block string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, layout.ErrFinalized) {
		return err
	}
	w.log.Warn("Block skipped", logger.String("block", block), logger.Error(err))
	w.skipped = append(w.skipped, fmt.Sprintf("%s could not be placed: %v", block, err))
	return nil
}

// newSection starts a major section on its own page.
func (w *writer) newSection(title string) error {
	if err := w.engine.ForceNewPage(); err != nil {
		return err
	}
	return w.engine.Heading(title)
}

func (w *writer) header() error {
	if !w.opts.IncludeHeader {
		return nil
	}
	b := w.cert.Branding
	if logo, ok := w.src.ResolveAsset(w.ctx, b.LogoPath); ok {
		if err := w.soft("company logo", w.engine.ImageBlock(logo, logoMaxW, logoMaxH)); err != nil {
			return err
		}
	}
	if err := w.engine.Heading("Electrical Installation Condition Report"); err != nil {
		return err
	}
	return w.engine.KeyValues(present([]layout.KV{
		{Key: "Company", Value: b.Name},
		{Key: "Address", Value: b.Address},
		{Key: "Telephone", Value: b.Phone},
		{Key: "Email", Value: b.Email},
		{Key: "Website", Value: b.Website},
		{Key: "Registration number", Value: b.RegistrationNumber},
		{Key: "Registration scheme", Value: b.SchemeName},
		{Key: "Certificate number", Value: w.cert.Header.CertificateNumber},
		{Key: "Reference", Value: w.cert.Header.Reference},
		{Key: "Date of issue", Value: w.cert.Header.IssueDate},
	}, "Company", "Certificate number"))
}

func (w *writer) clientAndScope() error {
	c, in := w.cert.Client, w.cert.Installation
	if err := w.newSection("Details of the client and scope of the report"); err != nil {
		return err
	}
	if err := w.engine.KeyValues([]layout.KV{
		{Key: "Client", Value: c.Name},
		{Key: "Client address", Value: c.Address},
		{Key: "Telephone", Value: c.Phone},
		{Key: "Email", Value: c.Email},
	}); err != nil {
		return err
	}
	if err := w.engine.Subheading("Purpose and extent"); err != nil {
		return err
	}
	return w.engine.KeyValues([]layout.KV{
		{Key: "Purpose of the report", Value: in.PurposeOfReport},
		{Key: "Extent of the inspection", Value: in.ExtentOfInspection},
		{Key: "Agreed limitations", Value: in.Limitations},
		{Key: "Date of inspection", Value: in.InspectionDate},
		{Key: "Recommended next inspection", Value: in.NextInspectionDate},
	})
}

func (w *writer) supplyAndInstallation() error {
	s, in := w.cert.Supply, w.cert.Installation
	if err := w.newSection("Supply characteristics and installation details"); err != nil {
		return err
	}
	if err := w.engine.KeyValues([]layout.KV{
		{Key: "Earthing arrangement", Value: s.EarthingArrangement},
		{Key: "Live conductors", Value: s.LiveConductors},
		{Key: "Nominal voltage (U/Uo)", Value: s.NominalVoltage},
		{Key: "Nominal frequency", Value: s.NominalFrequency},
		{Key: "Prospective fault current", Value: s.ProspectiveFaultCurrent},
		{Key: "External loop impedance Ze", Value: s.Ze},
		{Key: "Supply protective device", Value: s.SupplyDeviceType},
		{Key: "Supply device rating", Value: s.SupplyDeviceRating},
		{Key: "Main switch rating", Value: s.MainSwitchRating},
		{Key: "Earthing conductor", Value: s.EarthingConductorSize},
		{Key: "Main protective bonding", Value: s.MainBondingSize},
		{Key: "Earth electrode resistance Ra", Value: s.EarthElectrodeRa},
	}); err != nil {
		return err
	}
	if err := w.engine.Subheading("Installation"); err != nil {
		return err
	}
	return w.engine.KeyValues([]layout.KV{
		{Key: "Installation address", Value: in.Address},
		{Key: "Description of premises", Value: in.PremisesType},
		{Key: "Estimated age of wiring", Value: in.EstimatedAge},
		{Key: "Evidence of alterations", Value: in.EvidenceOfAlterations},
		{Key: "Installation records available", Value: in.RecordsAvailable},
	})
}

func (w *writer) schedule() error {
	if !w.opts.IncludeTestResults || (len(w.cert.Circuits) == 0 && len(w.cert.TestResults) == 0) {
		return nil
	}
	if err := w.newSection("Schedule of circuits and test results"); err != nil {
		return err
	}
	if synthesized(w.cert.Circuits) {
		if err := w.engine.Note("Circuit details were not recorded. Rows are numbered from the declared circuit count."); err != nil {
			return err
		}
	}
	if len(w.cert.Circuits) > 0 {
		rows := make([][]string, len(w.cert.Circuits))
		for i, c := range w.cert.Circuits {
			rows[i] = []string{c.Number, c.Description, c.TypeOfWiring, c.ReferenceMethod, c.Points,
				c.LiveSize, c.CPCSize, c.DeviceStandard, c.DeviceType, c.Rating, c.BreakingCapacity,
				c.RCDType, c.RCDRating, c.MaxZs}
		}
		if err := w.engine.Table(layout.Table{Columns: circuitColumns, Rows: rows, FontSize: 6.5}); err != nil {
			return err
		}
	}
	if len(w.cert.TestResults) == 0 {
		return nil
	}
	if err := w.engine.Subheading("Test results"); err != nil {
		return err
	}
	rows := make([][]string, len(w.cert.TestResults))
	for i, t := range w.cert.TestResults {
		rows[i] = []string{t.CircuitNumber, t.Description, t.R1R2, t.R2, t.RingR1, t.RingRn, t.RingR2,
			t.InsulationLiveLive, t.InsulationLiveEarth, t.Polarity, t.Zs, t.RCDTime, t.RCDTestButton,
			t.AFDDTest, t.Remarks}
	}
	return w.engine.Table(layout.Table{Columns: testColumns, Rows: rows, FontSize: 6.5})
}

var circuitColumns = []layout.Column{
	{Title: "No.", Weight: 0.8, Align: layout.AlignCenter},
	{Title: "Description", Weight: 3},
	{Title: "Wiring", Weight: 1},
	{Title: "Ref. method", Weight: 1},
	{Title: "Points", Weight: 0.8, Align: layout.AlignCenter},
	{Title: "Live", Weight: 1},
	{Title: "CPC", Weight: 1},
	{Title: "BS EN", Weight: 1.3},
	{Title: "Type", Weight: 0.8},
	{Title: "Rating", Weight: 1},
	{Title: "Breaking capacity", Weight: 1.1},
	{Title: "RCD type", Weight: 0.9},
	{Title: "RCD rating", Weight: 1},
	{Title: "Max Zs", Weight: 1},
}

var testColumns = []layout.Column{
	{Title: "No.", Weight: 0.8, Align: layout.AlignCenter},
	{Title: "Description", Weight: 2.4},
	{Title: "R1+R2", Weight: 1},
	{Title: "R2", Weight: 1},
	{Title: "Ring r1", Weight: 1},
	{Title: "Ring rn", Weight: 1},
	{Title: "Ring r2", Weight: 1},
	{Title: "IR L-L", Weight: 1},
	{Title: "IR L-E", Weight: 1},
	{Title: "Polarity", Weight: 1, Align: layout.AlignCenter},
	{Title: "Zs", Weight: 1},
	{Title: "RCD time", Weight: 1},
	{Title: "RCD button", Weight: 1, Align: layout.AlignCenter},
	{Title: "AFDD", Weight: 0.9, Align: layout.AlignCenter},
	{Title: "Remarks", Weight: 1.6},
}

func synthesized(circuits []domain.Circuit) bool {
	return len(circuits) > 0 && circuits[0].Synthesized
}

func (w *writer) checklist() error {
	if !w.opts.IncludeInspectionChecklist || len(w.cert.InspectionItems) == 0 {
		return nil
	}
	if err := w.newSection("Schedule of inspections"); err != nil {
		return err
	}
	rows := make([][]string, len(w.cert.InspectionItems))
	for i, it := range w.cert.InspectionItems {
		rows[i] = []string{it.Number, it.Section, it.Description, it.Outcome, it.Notes}
	}
	if err := w.engine.Table(layout.Table{
		Columns: []layout.Column{
			{Title: "Item", Weight: 0.8},
			{Title: "Section", Weight: 2},
			{Title: "Description", Weight: 5},
			{Title: "Outcome", Weight: 1, Align: layout.AlignCenter},
			{Title: "Notes", Weight: 2.5},
		},
		Rows:     rows,
		FontSize: 7.5,
	}); err != nil {
		return err
	}
	return w.engine.Note("Outcomes: ✓ acceptable, ✗ unacceptable, C1/C2/C3/FI classified observation, N/V not verified, LIM limitation, N/A not applicable.")
}

func (w *writer) observations() error {
	if err := w.newSection("Observations and recommendations"); err != nil {
		return err
	}
	obs := w.cert.Observations
	if len(obs) == 0 {
		return w.engine.Paragraph("No observations were recorded during this inspection.")
	}
	if err := w.engine.Table(layout.Table{
		Columns: []layout.Column{{Title: "C1"}, {Title: "C2"}, {Title: "C3"}, {Title: "FI"}},
		Rows:    [][]string{severityCounts(obs)},
	}); err != nil {
		return err
	}

	var photos [][]domain.Image
	if w.opts.PrefetchPhotos {
		var err error
		if photos, err = w.prefetch(obs); err != nil {
			return err
		}
	}
	for i, o := range obs {
		var imgs []domain.Image
		if photos != nil {
			imgs = photos[i]
		} else {
			if err := w.ctx.Err(); err != nil {
				return err
			}
			imgs = slices.Collect(w.src.ResolvePhotos(w.ctx, o.ID))
		}
		if err := w.observation(o, imgs); err != nil {
			return err
		}
	}
	return nil
}

// prefetch resolves every observation's photos concurrently. Layout waits
// for the whole batch and then places photos in observation order, so the
// result matches sequential resolution.
func (w *writer) prefetch(obs []domain.Observation) ([][]domain.Image, error) {
	out := make([][]domain.Image, len(obs))
	g, ctx := errgroup.WithContext(w.ctx)
	g.SetLimit(max(w.limit, 1))
	for i, o := range obs {
		g.Go(func() error {
			out[i] = slices.Collect(w.src.ResolvePhotos(ctx, o.ID))
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, w.ctx.Err()
}

func (w *writer) observation(o domain.Observation, photos []domain.Image) error {
	title := fmt.Sprintf("Item %s: %s %s", o.ItemNumber, o.Code, o.CodeDescription)
	if err := w.engine.Subheading(title); err != nil {
		return err
	}
	if err := w.engine.KeyValues([]layout.KV{
		{Key: "Observation", Value: o.Description},
		{Key: "Location", Value: o.Location},
		{Key: "Recommended action", Value: o.Recommendation},
		{Key: "Regulation", Value: o.Regulation},
		{Key: "Urgency", Value: o.Urgency},
	}); err != nil {
		return err
	}
	if len(photos) == 0 {
		return nil
	}
	return w.soft("photos for observation "+o.ItemNumber, w.engine.ImageGrid(photos, photoMaxH))
}

func severityCounts(obs []domain.Observation) []string {
	counts := map[domain.Severity]int{}
	for _, o := range obs {
		counts[o.Code]++
	}
	out := make([]string, 0, 4)
	for _, s := range []domain.Severity{domain.SeverityC1, domain.SeverityC2, domain.SeverityC3, domain.SeverityFI} {
		out = append(out, fmt.Sprint(counts[s]))
	}
	return out
}

func (w *writer) declaration() error {
	d, ins := w.cert.Declaration, w.cert.Inspector
	if err := w.newSection("Declaration"); err != nil {
		return err
	}
	if err := w.engine.KeyValues([]layout.KV{
		{Key: "Overall assessment", Value: d.OverallAssessment},
		{Key: "General condition", Value: d.SummaryOfCondition},
		{Key: "Recommended retest interval", Value: d.RetestInterval},
	}); err != nil {
		return err
	}
	if d.OverallAssessment == shapers.AssessmentUnsatisfactory {
		if err := w.engine.Note("Remedial action is required for the observations classified C1, C2 or FI."); err != nil {
			return err
		}
	}
	if err := w.engine.Paragraph("I/We, being the person(s) responsible for the inspection and testing of the electrical " +
		"installation, particulars of which are described in this report, having exercised reasonable skill and care, " +
		"hereby declare that the information in this report, including the observations and the attached schedules, " +
		"provides an accurate assessment of the condition of the electrical installation."); err != nil {
		return err
	}
	if err := w.engine.KeyValues([]layout.KV{
		{Key: "Inspector", Value: ins.Name},
		{Key: "Position", Value: ins.Position},
		{Key: "Company", Value: ins.Company},
		{Key: "Registration", Value: ins.Registration},
	}); err != nil {
		return err
	}

	inspector := layout.Signature{Role: "Inspected and tested by", Name: ins.Name, Date: ins.SignedDate}
	reviewer := layout.Signature{Role: "Reviewed by (qualified supervisor)", Name: d.ReviewerName, Date: d.ReviewDate}
	if w.opts.IncludeDigitalSignatures {
		inspector.Image = w.signature(ins.SignaturePath)
		reviewer.Image = w.signature(d.ReviewerSignaturePath)
	}
	return w.soft("signatures", w.engine.SignatureBlock([]layout.Signature{inspector, reviewer}))
}

func (w *writer) signature(ref string) *domain.Image {
	img, ok := w.src.ResolveAsset(w.ctx, ref)
	if !ok {
		return nil
	}
	return &img
}

func (w *writer) footer(page, total int) (string, string) {
	left := fmt.Sprintf("%s %s", domain.CertificateTypeTag, w.cert.DocumentID())
	if !domain.IsPlaceholder(w.cert.Branding.Name) {
		left += " | " + w.cert.Branding.Name
	}
	return left, fmt.Sprintf("Page %d of %d", page, total)
}

// present drops pairs whose value is a placeholder, except the named keys.
func present(kvs []layout.KV, always ...string) []layout.KV {
	out := kvs[:0:0]
	for _, kv := range kvs {
		if !domain.IsPlaceholder(kv.Value) || slices.Contains(always, kv.Key) {
			out = append(out, kv)
		}
	}
	return out
}
