package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sstrulea/ascutzit-crm-sub001/http-server/request"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/trays"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/go-chi/render"
)

type TrayReader interface {
	Quote(ctx context.Context, trayID int64) (trays.Quote, error)
	Rows(ctx context.Context, trayID int64) ([]storage.DisplayRow, error)
}

func GetQuote(log *slog.Logger, reader TrayReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.trays.GetQuote"

		trayID, err := request.TrayID(r)
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		quote, err := reader.Quote(ctx, trayID)
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		render.JSON(w, r, quote)
	}
}

func GetRows(log *slog.Logger, reader TrayReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.trays.GetRows"

		trayID, err := request.TrayID(r)
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rows, err := reader.Rows(ctx, trayID)
		if err != nil {
			request.Fail(log, w, op, err)
			return
		}

		render.JSON(w, r, rows)
	}
}
