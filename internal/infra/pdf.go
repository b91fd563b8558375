package infra

// pdf.go renders sale receipts with go-pdf/fpdf. A boleta prints as a
// thermal-style ticket; a factura adds the customer's RUT and name. Both show
// neto, IVA and total. Output goes to storagePath/boleta_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"bazarpos/internal/model"
	"bazarpos/internal/money"

	"github.com/go-pdf/fpdf"
)

// ComprobantePath is where GenerateComprobantePDF writes the receipt of boletaID.
func ComprobantePath(storagePath string, boletaID uint) string {
	return filepath.Join(storagePath, fmt.Sprintf("boleta_%d.pdf", boletaID))
}

// GenerateComprobantePDF writes the receipt for a committed Boleta. Detalles
// should be preloaded with their Producto so names can be printed.
// Returns the path of the generated file.
func GenerateComprobantePDF(b *model.Boleta, storeName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := ComprobantePath(storagePath, b.ID)

	// 74mm wide like thermal paper; height grows with the number of lines
	height := 95.0 + 5.0*float64(len(b.Detalles))
	if b.TipoDocumento == model.DocumentoFactura {
		height += 10
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	// ── Header ───────────────────────────────────────────────────────────────
	titulo := "Boleta de Venta"
	if b.TipoDocumento == model.DocumentoFactura {
		titulo = "Factura"
	}
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(storeName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr(titulo), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Sale info ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("N° %d", b.ID)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, b.Fecha.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Vendedor: "+b.VendedorUsuario), "", 1, "L", false, 0, "")
	if b.TipoDocumento == model.DocumentoFactura {
		pdf.CellFormat(contentW, 4, tr("RUT: "+deref(b.ClienteRUT)), "", 1, "L", false, 0, "")
		pdf.CellFormat(contentW, 4, tr("Cliente: "+deref(b.ClienteNombre)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Lines ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52 // product name
	col2 := contentW * 0.16 // qty
	col3 := contentW * 0.32 // subtotal

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, d := range b.Detalles {
		nombre := fmt.Sprintf("Producto %d", d.ProductoID)
		if d.Producto != nil {
			nombre = d.Producto.Nombre
		}
		if r := []rune(nombre); len(r) > 22 {
			nombre = string(r[:21]) + "."
		}
		pdf.CellFormat(col1, 5, tr(nombre), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", d.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, money.FormatCLP(d.Subtotal), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 5, "Neto:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 5, money.FormatCLP(b.Neto), "", 1, "R", false, 0, "")
	pdf.CellFormat(col1+col2, 5, "IVA:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 5, money.FormatCLP(b.IVA), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, money.FormatCLP(b.Total), "", 1, "R", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
