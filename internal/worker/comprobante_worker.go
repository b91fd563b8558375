package worker

// comprobante_worker.go
// Renders the PDF receipt of a committed sale. PDF generation is retried with
// exponential backoff (max 3 attempts) before the job is parked in the dead-letter list.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bazarpos/internal/infra"
	"bazarpos/internal/model"

	"github.com/rs/zerolog/log"
)

const maxAttempts = 3

// ComprobanteJobPayload is the job envelope sent to QueueComprobante.
type ComprobanteJobPayload struct {
	BoletaID uint `json:"boleta_id"`
}

// BoletaFinder is the slice of the sales repository the worker needs.
type BoletaFinder interface {
	FindByID(ctx context.Context, id uint) (*model.Boleta, error)
}

type ComprobanteWorker struct {
	boletas        BoletaFinder
	storeName      string
	pdfStoragePath string
	backoff        time.Duration
}

func NewComprobanteWorker(boletas BoletaFinder, storeName, pdfStoragePath string) *ComprobanteWorker {
	return &ComprobanteWorker{
		boletas:        boletas,
		storeName:      storeName,
		pdfStoragePath: pdfStoragePath,
		backoff:        time.Second,
	}
}

// Process handles a single comprobante job:
//  1. Parse ComprobanteJobPayload
//  2. Fetch the Boleta with its detalles and products
//  3. Render the PDF, retrying transient failures
func (w *ComprobanteWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ComprobanteJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("comprobante_worker: invalid payload: %w", err)
	}

	boleta, err := w.boletas.FindByID(ctx, payload.BoletaID)
	if err != nil {
		return fmt.Errorf("comprobante_worker: boleta %d: %w", payload.BoletaID, err)
	}

	var pdfPath string
	err = withRetry(ctx, maxAttempts, w.backoff, func(attempt int) error {
		path, err := infra.GenerateComprobantePDF(boleta, w.storeName, w.pdfStoragePath)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Uint("boleta_id", boleta.ID).
				Msg("comprobante_worker: PDF attempt failed, retrying")
			return err
		}
		pdfPath = path
		return nil
	})
	if err != nil {
		return fmt.Errorf("comprobante_worker: PDF failed after %d attempts: %w", maxAttempts, err)
	}

	log.Info().Str("pdf", pdfPath).Uint("boleta_id", boleta.ID).Msg("comprobante_worker: PDF generated")
	return nil
}

// withRetry calls fn up to attempts times with exponential backoff starting at
// base: attempt 1 is immediate, 2 waits base, 3 waits 2×base.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, attempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			wait := base * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
