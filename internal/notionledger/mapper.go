package notionledger

import (
	"github.com/jomei/notionapi"

	"github.com/dariusmp/inboxledger/internal/ledger"
)

// RecordToNotionProperties converts a complete ledger record to the
// properties of the Notion transactions database. The amount is a Number
// property and loses exactness past float64; the authoritative value stays
// in the warehouse.
func RecordToNotionProperties(rec *ledger.Record) notionapi.Properties {
	props := notionapi.Properties{
		"Merchant Name": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.Merchant,
					},
				},
			},
		},
		"Transaction ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.TrxID,
					},
				},
			},
		},
	}

	ts := notionapi.Date(rec.Timestamp)
	props["Datetime"] = notionapi.DateProperty{
		Date: &notionapi.DateObject{Start: &ts},
	}

	amount, _ := rec.Amount.Decimal.Float64()
	props["Amount"] = notionapi.NumberProperty{Number: amount}

	fees, _ := rec.Fees.Float64()
	props["Fees"] = notionapi.NumberProperty{Number: fees}

	props["Currency"] = notionapi.SelectProperty{
		Select: notionapi.Option{Name: rec.Currency},
	}
	props["Payment Method"] = notionapi.SelectProperty{
		Select: notionapi.Option{Name: rec.PaymentMethod},
	}

	direction := "OUT"
	if rec.Incoming != nil && *rec.Incoming {
		direction = "IN"
	}
	props["Transaction Type"] = notionapi.SelectProperty{
		Select: notionapi.Option{Name: direction},
	}

	if rec.Description != nil && *rec.Description != "" {
		props["Notes"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: *rec.Description,
					},
				},
			},
		}
	}

	return props
}
