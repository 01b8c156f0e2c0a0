package detect

import (
	"reflect"
	"testing"
)

func TestTally_DescendingCounts(t *testing.T) {
	got := Tally([]string{"A", "B", "A", "C", "B", "A"})
	want := []LabelCount{{"A", 3}, {"B", 2}, {"C", 1}}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tally() = %v, want %v", got, want)
	}
}

func TestTally_TiesKeepFirstSeenOrder(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   []LabelCount
	}{
		{
			name:   "all ties",
			labels: []string{"Walking", "Sitting", "Cycling"},
			want:   []LabelCount{{"Walking", 1}, {"Sitting", 1}, {"Cycling", 1}},
		},
		{
			name:   "tie behind leader",
			labels: []string{"Lying", "Running", "Jogging", "Running", "Lying", "Running"},
			want:   []LabelCount{{"Running", 3}, {"Lying", 2}, {"Jogging", 1}},
		},
		{
			name:   "later label overtakes",
			labels: []string{"B", "A", "A"},
			want:   []LabelCount{{"A", 2}, {"B", 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tally(tt.labels); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tally(%v) = %v, want %v", tt.labels, got, tt.want)
			}
		})
	}
}

func TestTally_Empty(t *testing.T) {
	if got := Tally(nil); got != nil {
		t.Errorf("Tally(nil) = %v, want nil", got)
	}
	if got := Tally([]string{}); got != nil {
		t.Errorf("Tally([]) = %v, want nil", got)
	}
}

func TestDistinctLabels(t *testing.T) {
	got := DistinctLabels([]string{"C", "A", "C", "B", "A"})
	want := []string{"C", "A", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DistinctLabels() = %v, want %v", got, want)
	}
}
