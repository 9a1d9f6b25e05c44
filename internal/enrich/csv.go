// Package enrich 为资源 CSV 补全缺失的经纬度，并可选地导入到存储
package enrich

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Headers CSV 列顺序，写回时保持一致
var Headers = []string{"id", "name", "type", "address", "phone", "latitude", "longitude", "hours", "distance", "appointment_required"}

// Row 一行资源数据，全部保留为文本
type Row struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Type                string `json:"type"`
	Address             string `json:"address"`
	Phone               string `json:"phone"`
	Latitude            string `json:"latitude"`
	Longitude           string `json:"longitude"`
	Hours               string `json:"hours"`
	Distance            string `json:"distance"`
	AppointmentRequired string `json:"appointment_required"`
}

// NeedsCoordinates 经度或纬度为空
func (r Row) NeedsCoordinates() bool {
	return strings.TrimSpace(r.Latitude) == "" || strings.TrimSpace(r.Longitude) == ""
}

func (r Row) values() []string {
	return []string{r.ID, r.Name, r.Type, r.Address, r.Phone, r.Latitude, r.Longitude, r.Hours, r.Distance, r.AppointmentRequired}
}

func (r *Row) set(column, value string) {
	switch column {
	case "id":
		r.ID = value
	case "name":
		r.Name = value
	case "type":
		r.Type = value
	case "address":
		r.Address = value
	case "phone":
		r.Phone = value
	case "latitude":
		r.Latitude = value
	case "longitude":
		r.Longitude = value
	case "hours":
		r.Hours = value
	case "distance":
		r.Distance = value
	case "appointment_required":
		r.AppointmentRequired = value
	}
}

// ReadRows 按表头名映射列，未知列忽略，缺失列为空串
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		var row Row
		for i, v := range record {
			if i < len(columns) {
				row.set(columns[i], strings.TrimSpace(v))
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteRows 写出表头与全部行，含逗号或引号的字段自动加引号
func WriteRows(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
