package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error) {
	title, body := certificateText(data)
	if title == "" {
		return nil, fmt.Errorf("unknown certificate type %q", data.CertificateType)
	}

	cfg := config.NewBuilder().
		WithLeftMargin(20).
		WithRightMargin(20).
		WithTopMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRow(8,
		text.NewCol(12, "Republic of the Philippines", props.Text{
			Size:  10,
			Align: align.Center,
		}),
	)
	m.AddRow(6,
		text.NewCol(12, fmt.Sprintf("Province of %s", data.Province), props.Text{
			Size:  10,
			Align: align.Center,
		}),
	)
	m.AddRow(6,
		text.NewCol(12, data.Municipality, props.Text{
			Size:  10,
			Align: align.Center,
		}),
	)
	m.AddRow(10,
		text.NewCol(12, strings.ToUpper(data.BarangayName), props.Text{
			Size:  13,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, "OFFICE OF THE PUNONG BARANGAY", props.Text{
			Size:  9,
			Align: align.Center,
		}),
	)

	m.AddRow(4, line.NewCol(12))

	m.AddRow(20,
		text.NewCol(12, title, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Center,
			Top:   6,
		}),
	)

	m.AddRow(8,
		text.NewCol(12, "TO WHOM IT MAY CONCERN:", props.Text{
			Size:  11,
			Style: fontstyle.Bold,
		}),
	)

	m.AddRow(40,
		text.NewCol(12, body, props.Text{
			Size: 11,
			Top:  4,
		}),
	)

	m.AddRow(12,
		text.NewCol(12, fmt.Sprintf("Issued this %s at %s, %s, %s.",
			data.IssuedAt, data.BarangayName, data.Municipality, data.Province), props.Text{
			Size: 11,
		}),
	)

	captain := data.Captain
	if captain == "" {
		captain = "Punong Barangay"
	}
	m.AddRow(35,
		col.New(7),
		col.New(5).Add(
			text.New(strings.ToUpper(captain), props.Text{
				Size:  11,
				Style: fontstyle.Bold,
				Align: align.Center,
				Top:   20,
			}),
			text.New("Punong Barangay", props.Text{
				Size:  9,
				Align: align.Center,
				Top:   25,
			}),
		),
	)

	m.AddRow(10,
		text.NewCol(12, "Control No: "+data.ControlNumber, props.Text{
			Size: 8,
			Top:  4,
		}),
	)
	m.AddRow(6,
		text.NewCol(12, "Not valid without the official barangay seal.", props.Text{
			Size:  8,
			Style: fontstyle.Italic,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

func certificateText(data CertificateData) (title string, body string) {
	residency := fmt.Sprintf("This is to certify that %s, born on %s, is a bona fide resident of %s, with residence at %s.",
		data.FullName, data.Birthday, data.BarangayName, data.Address)

	switch data.CertificateType {
	case "clearance":
		title = "BARANGAY CLEARANCE"
		body = residency + fmt.Sprintf(" This further certifies that the above named person has no derogatory record on file in this barangay. This clearance is issued upon request of the interested party for %s.", purposeOrDefault(data.Purpose))
	case "residency":
		title = "CERTIFICATE OF RESIDENCY"
		body = residency + fmt.Sprintf(" This certification is issued upon request of the interested party for %s.", purposeOrDefault(data.Purpose))
	case "indigency":
		title = "CERTIFICATE OF INDIGENCY"
		body = residency + fmt.Sprintf(" This further certifies that the above named person belongs to an indigent family in this barangay. This certification is issued upon request of the interested party for %s.", purposeOrDefault(data.Purpose))
	}
	return title, body
}

func purposeOrDefault(purpose string) string {
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return "whatever legal purpose it may serve"
	}
	return purpose
}
