package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/mirasim/internal/dynamo"
)

func WritePointsCSV(w io.Writer, points []dynamo.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"i", "x", "y"}); err != nil {
		return err
	}
	for i, p := range points {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(p.X, 'g', -1, 64),
			strconv.FormatFloat(p.Y, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// PointsDocument is the JSON form of an exported orbit.
type PointsDocument struct {
	Variant    dynamo.Variant `json:"variant"`
	Params     dynamo.Params  `json:"params"`
	Initial    dynamo.Point   `json:"initial"`
	Iterations int            `json:"iterations"`
	Skip       int            `json:"skip"`
	Points     [][2]float64   `json:"points"`
}

func NewPointsDocument(v dynamo.Variant, p dynamo.Params, cfg dynamo.Config, points []dynamo.Point) PointsDocument {
	doc := PointsDocument{
		Variant:    v,
		Params:     p,
		Initial:    cfg.Initial,
		Iterations: cfg.Iterations,
		Skip:       cfg.Skip,
		Points:     make([][2]float64, len(points)),
	}
	for i, pt := range points {
		doc.Points[i] = [2]float64{pt.X, pt.Y}
	}
	return doc
}

// WritePointsJSON fails with an encoding error if any point is non-finite.
func WritePointsJSON(w io.Writer, doc PointsDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
