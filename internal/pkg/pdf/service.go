// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/cafe-frontend/internal/config"
	"github.com/your-org/cafe-frontend/internal/domain/admin"
)

// Service renders income reports as PDF
type Service struct {
	config *config.Config
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		now:    time.Now,
	}
}

// IncomeReportData is passed to the report template
type IncomeReportData struct {
	CafeName    string
	Currency    string
	Title       string
	GeneratedAt string
	Report      *admin.IncomeReport
}

// GenerateIncomeReport renders the monthly income report to PDF
func (s *Service) GenerateIncomeReport(report *admin.IncomeReport) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderHTML(report)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Title.Set(fmt.Sprintf("Income %s", report.Month))

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Encoding.Set("utf-8")

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderHTML renders the report page that is fed to wkhtmltopdf
func (s *Service) RenderHTML(report *admin.IncomeReport) ([]byte, error) {
	month, err := time.Parse("2006-01", report.Month)
	if err != nil {
		return nil, fmt.Errorf("invalid report month %q: %w", report.Month, err)
	}

	data := IncomeReportData{
		CafeName:    s.config.Report.CafeName,
		Currency:    s.config.Report.Currency,
		Title:       month.Format("January 2006"),
		GeneratedAt: s.now().In(s.config.ReportLocation()).Format("2 Jan 2006 15:04"),
		Report:      report,
	}

	var buf bytes.Buffer
	if err := incomeTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

var incomeTemplate = template.Must(template.New("income").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.CafeName}} income {{.Report.Month}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 24px; color: #333; }
        h1 { font-size: 22px; margin: 0 0 4px; }
        .meta { color: #777; font-size: 12px; margin-bottom: 20px; }
        table { width: 100%; border-collapse: collapse; }
        th { background: #f5f5f5; text-align: left; padding: 10px; border-bottom: 2px solid #ddd; }
        td { padding: 8px 10px; border-bottom: 1px solid #eee; }
        .num { text-align: right; }
        tfoot td { font-weight: bold; border-top: 2px solid #ddd; }
    </style>
</head>
<body>
    <h1>{{.CafeName}}: Monthly Income</h1>
    <div class="meta">{{.Title}} &middot; generated {{.GeneratedAt}}</div>
    <table>
        <thead>
            <tr><th>Date</th><th class="num">Orders</th><th class="num">Income ({{.Currency}})</th></tr>
        </thead>
        <tbody>
        {{- range .Report.Days}}
            <tr><td>{{.Date}}</td><td class="num">{{.Orders}}</td><td class="num">{{$.Currency}}{{.Income.StringFixed 2}}</td></tr>
        {{- end}}
        </tbody>
        <tfoot>
            <tr><td>Total</td><td></td><td class="num">{{.Currency}}{{.Report.Total.StringFixed 2}}</td></tr>
        </tfoot>
    </table>
</body>
</html>
`))
