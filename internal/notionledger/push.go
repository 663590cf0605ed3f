package notionledger

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dariusmp/inboxledger/internal/ledger"
	"github.com/dariusmp/inboxledger/internal/logger"
)

// PushRecords creates one Notion page per complete record. It is
// idempotent on the Transaction ID property: records whose ID already has
// a page are skipped, so re-running an extraction never duplicates pages.
func PushRecords(ctx context.Context, svc NotionService, databaseID string, records []*ledger.Record) (created, skipped int, err error) {
	log := logger.FromContext(ctx)

	for _, rec := range records {
		if !rec.Proper() {
			continue
		}

		exists, err := pageExists(ctx, svc, databaseID, rec.TrxID)
		if err != nil {
			return created, skipped, fmt.Errorf("PushRecords: checking %s: %w", rec.TrxID, err)
		}
		if exists {
			skipped++
			continue
		}

		if _, err := svc.CreatePage(ctx, databaseID, RecordToNotionProperties(rec)); err != nil {
			return created, skipped, fmt.Errorf("PushRecords: creating page for %s: %w", rec.TrxID, err)
		}
		created++
		log.Info().
			Str("trx_id", rec.TrxID).
			Str("merchant", rec.Merchant).
			Msg("Created Notion page")
	}

	log.Info().
		Int("created", created).
		Int("skipped", skipped).
		Msg("Notion push complete")
	return created, skipped, nil
}

func pageExists(ctx context.Context, svc NotionService, databaseID, trxID string) (bool, error) {
	resp, err := svc.QueryDatabase(ctx, databaseID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Transaction ID",
			RichText: &notionapi.TextFilterCondition{
				Equals: trxID,
			},
		},
		PageSize: 1,
	})
	if err != nil {
		return false, err
	}
	return len(resp.Results) > 0, nil
}
