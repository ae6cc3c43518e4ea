// Package report exports the dashboard data as XLSX workbooks for
// offline use by the agriculture office.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ecoscope-id/ecoscope/pkg/models"
	"github.com/ecoscope-id/ecoscope/pkg/utils"
)

const (
	priceSheet   = "Harga Komoditas"
	weatherSheet = "Ringkasan Cuaca"
)

// PriceWorkbook builds an XLSX workbook with the price list and, when
// given, the daily weather summaries, and writes it to w.
func PriceWorkbook(w io.Writer, prices []models.MarketPrice, weather []models.DailyWeatherSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", priceSheet)
	if err := writePriceSheet(f, prices); err != nil {
		return err
	}

	if len(weather) > 0 {
		if _, err := f.NewSheet(weatherSheet); err != nil {
			return fmt.Errorf("report: weather sheet: %w", err)
		}
		if err := writeWeatherSheet(f, weather); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("report: write workbook: %w", err)
	}
	return nil
}

func writePriceSheet(f *excelize.File, prices []models.MarketPrice) error {
	headers := []string{"Tanggal", "Komoditas", "Pasar", "Satuan", "Harga"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(priceSheet, cell, header); err != nil {
			return fmt.Errorf("report: price header: %w", err)
		}
		f.SetColWidth(priceSheet, cell[:1], cell[:1], 22)
	}

	for i, p := range prices {
		row := i + 2
		f.SetCellValue(priceSheet, fmt.Sprintf("A%d", row), p.Date)
		f.SetCellValue(priceSheet, fmt.Sprintf("B%d", row), p.CommodityName)
		f.SetCellValue(priceSheet, fmt.Sprintf("C%d", row), p.MarketLocation)
		f.SetCellValue(priceSheet, fmt.Sprintf("D%d", row), p.Unit)
		f.SetCellValue(priceSheet, fmt.Sprintf("E%d", row), utils.FormatRupiah(p.Price))
	}
	return nil
}

func writeWeatherSheet(f *excelize.File, summaries []models.DailyWeatherSummary) error {
	headers := []string{"Tanggal", "Hari", "Suhu Rata-rata (°C)", "Curah Hujan (mm)", "Cuaca Dominan"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(weatherSheet, cell, header); err != nil {
			return fmt.Errorf("report: weather header: %w", err)
		}
		f.SetColWidth(weatherSheet, cell[:1], cell[:1], 22)
	}

	for i, s := range summaries {
		row := i + 2
		f.SetCellValue(weatherSheet, fmt.Sprintf("A%d", row), s.Day)
		f.SetCellValue(weatherSheet, fmt.Sprintf("B%d", row), s.Label)
		f.SetCellValue(weatherSheet, fmt.Sprintf("C%d", row), s.AvgTemp)
		f.SetCellValue(weatherSheet, fmt.Sprintf("D%d", row), s.TotalRainfall)
		f.SetCellValue(weatherSheet, fmt.Sprintf("E%d", row), s.DominantWeather)
	}
	return nil
}
