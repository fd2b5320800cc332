package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSyntheticMetricJSON(t *testing.T) {
	rec := PredictionRecord{Timeframe: TF1M, Confidence: Synthetic(72.5), Accuracy: Synthetic(88.0)}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"confidence":{"value":72.5,"synthetic":true}`) {
		t.Fatalf("confidence not labelled synthetic: %s", b)
	}
	var back PredictionRecord
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Confidence.Value() != 72.5 || back.Accuracy.Value() != 88.0 {
		t.Fatalf("values lost: %+v", back)
	}
	if !back.Confidence.IsSynthetic() {
		t.Fatalf("expected synthetic")
	}
}

func TestTimeframes(t *testing.T) {
	all := AllTimeframes()
	if len(all) != 6 || all[0] != TF1D || all[5] != TF1Y {
		t.Fatalf("unexpected timeframes %v", all)
	}
	all[0] = "X"
	if AllTimeframes()[0] != TF1D {
		t.Fatalf("AllTimeframes must return a copy")
	}
	if tf := NormalizeTimeframe(" 3m "); tf != TF3M || !IsValidTimeframe(tf) {
		t.Fatalf("unexpected normalize %q", tf)
	}
	if IsValidTimeframe("2D") {
		t.Fatalf("2D must be invalid")
	}
}
