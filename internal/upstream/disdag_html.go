package upstream

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ecoscope-id/ecoscope/internal/normalize"
	"github.com/ecoscope-id/ecoscope/pkg/models"
	"github.com/ecoscope-id/ecoscope/pkg/utils"
)

// FetchPriceTable scrapes the public harga-komoditas HTML page as a
// fallback when the JSON routes are down. The page renders one table row
// per commodity: name, unit, price, date.
func (d *Disdag) FetchPriceTable(ctx context.Context) ([]models.CommodityRecord, error) {
	cacheKey := "disdag:html"
	if cached, ok := d.cache.Get(cacheKey); ok {
		return cached.([]models.CommodityRecord), nil
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, _, err := doGet(ctx, d.baseURL+"/harga-komoditas", nil)
	if err != nil {
		return nil, fmt.Errorf("disdag price table: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse price table: %w", err)
	}

	var records []models.CommodityRecord
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		name := strings.TrimSpace(cells.Eq(0).Text())
		if name == "" {
			return
		}
		unit := strings.TrimSpace(cells.Eq(1).Text())
		if unit == "" {
			unit = normalize.DefaultUnit
		}
		price := utils.ParsePrice(strings.TrimSpace(cells.Eq(2).Text()))

		rec := models.CommodityRecord{
			Name:        name,
			Unit:        unit,
			Price:       price,
			Category:    normalize.DefaultCategory,
			ChangeLabel: "0%",
		}
		if cells.Length() > 3 {
			rec.Date = strings.TrimSpace(cells.Eq(3).Text())
		}
		records = append(records, rec)
	})

	if len(records) == 0 {
		return nil, fmt.Errorf("disdag price table: %w", ErrBadPayload)
	}

	d.cache.Set(cacheKey, records)
	return records, nil
}
