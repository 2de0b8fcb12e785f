package services

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"pledge-insights/models"
	"pledge-insights/utils"
)

// Enrich classifies every raw record and assigns it a stable key. The same
// dataset id and records always produce the same output. Keys are hashes of
// the dataset id, position and the numeric/zip fields only.
func Enrich(datasetID string, raw []models.RawRecord) []models.EnrichedRecord {
	out := make([]models.EnrichedRecord, 0, len(raw))
	keys := utils.NewKeySet()

	for i, r := range raw {
		key := householdKey(datasetID, i, r, 0)
		for salt := 1; !keys.Add(key); salt++ {
			key = householdKey(datasetID, i, r, salt)
		}

		change := r.PledgeCurrent - r.PledgePrior
		out = append(out, models.EnrichedRecord{
			RawRecord:     r,
			Key:           key,
			Status:        models.ClassifyStatus(r.PledgeCurrent, r.PledgePrior),
			ChangeDollar:  change,
			ChangePercent: ratioPtr(change, r.PledgePrior),
		})
	}
	return out
}

func householdKey(datasetID string, index int, r models.RawRecord, salt int) string {
	d := xxhash.New()
	buf := make([]byte, 0, 96)
	buf = append(buf, datasetID...)
	buf = append(buf, 0)
	buf = strconv.AppendInt(buf, int64(index), 10)
	buf = append(buf, '|')
	buf = strconv.AppendInt(buf, int64(r.Age), 10)
	buf = append(buf, '|')
	buf = strconv.AppendFloat(buf, r.PledgeCurrent, 'g', -1, 64)
	buf = append(buf, '|')
	buf = strconv.AppendFloat(buf, r.PledgePrior, 'g', -1, 64)
	buf = append(buf, '|')
	buf = append(buf, r.Zip...)
	if salt > 0 {
		buf = append(buf, '#')
		buf = strconv.AppendInt(buf, int64(salt), 10)
	}
	_, _ = d.Write(buf)
	return fmt.Sprintf("hh-%016x", d.Sum64())
}
