package excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sstrulea/ascutzit-crm-sub001/http-server/request"
)

type QuoteExcelGenerator interface {
	GenerateQuoteExcel(ctx context.Context, trayID int64) ([]byte, error)
}

func ExportQuote(log *slog.Logger, gen QuoteExcelGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.trays.ExportQuote"

		trayID, err := request.TrayID(r)
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		// rendering the workbook takes longer than a JSON quote
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		excelBytes, err := gen.GenerateQuoteExcel(ctx, trayID)
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		fileName := fmt.Sprintf("Quote_%d_%s.xlsx", trayID, time.Now().Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		if _, err := w.Write(excelBytes); err != nil {
			log.Error("failed to write excel", slog.String("op", op), slog.String("error", err.Error()))
		}
	}
}
