package netblock

import (
	"sort"
	"testing"
)

func parseAll(t *testing.T, cidrs []string) []Block {
	t.Helper()
	blocks := make([]Block, 0, len(cidrs))
	for _, cidr := range cidrs {
		blocks = append(blocks, mustParse(t, cidr))
	}
	return blocks
}

func renderAll(blocks []Block) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.String())
	}
	return out
}

// coveredRanges returns the union of the blocks' address ranges as sorted,
// disjoint [start, end] pairs in uint64 space so /0 endpoints survive the +1.
func coveredRanges(blocks []Block) [][2]uint64 {
	ranges := make([][2]uint64, 0, len(blocks))
	for _, b := range blocks {
		ranges = append(ranges, [2]uint64{uint64(b.Network()), uint64(b.Last())})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i][0] < ranges[j][0] })

	var merged [][2]uint64
	for _, r := range ranges {
		if n := len(merged); n > 0 && r[0] <= merged[n-1][1]+1 {
			if r[1] > merged[n-1][1] {
				merged[n-1][1] = r[1]
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func sameRanges(a, b [][2]uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAggregateScenarios(t *testing.T) {
	cases := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "adjacent siblings collapse",
			input: []string{"1.0.1.0/24", "1.0.0.0/24"},
			want:  []string{"1.0.0.0/23"},
		},
		{
			name:  "unmergeable neighbours stay ordered",
			input: []string{"1.0.2.0/23", "1.0.1.0/24"},
			want:  []string{"1.0.1.0/24", "1.0.2.0/23"},
		},
		{
			name:  "contained block dropped",
			input: []string{"10.0.0.0/8", "10.1.2.0/24"},
			want:  []string{"10.0.0.0/8"},
		},
		{
			name:  "four quarters cascade to one block",
			input: []string{"1.0.0.192/26", "1.0.0.0/26", "1.0.0.128/26", "1.0.0.64/26"},
			want:  []string{"1.0.0.0/24"},
		},
		{
			name:  "misaligned adjacency preserved",
			input: []string{"1.0.1.0/24", "1.0.2.0/24"},
			want:  []string{"1.0.1.0/24", "1.0.2.0/24"},
		},
		{
			name:  "merge result absorbed by earlier supernet",
			input: []string{"10.0.0.0/8", "10.1.0.0/24", "10.1.1.0/24"},
			want:  []string{"10.0.0.0/8"},
		},
		{
			name:  "cascade continues after merge",
			input: []string{"1.0.0.0/25", "1.0.0.128/25", "1.0.1.0/24"},
			want:  []string{"1.0.0.0/23"},
		},
		{
			name:  "exact duplicates are redundant",
			input: []string{"1.0.0.0/24", "1.0.0.0/24"},
			want:  []string{"1.0.0.0/24"},
		},
		{
			name:  "full address space absorbs everything",
			input: []string{"0.0.0.0/0", "10.0.0.0/8", "192.0.2.0/24"},
			want:  []string{"0.0.0.0/0"},
		},
		{
			name:  "empty input",
			input: nil,
			want:  []string{},
		},
		{
			name:  "single block",
			input: []string{"203.0.113.0/24"},
			want:  []string{"203.0.113.0/24"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := renderAll(Aggregate(parseAll(t, tc.input)))
			if len(got) != len(tc.want) {
				t.Fatalf("Aggregate = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("Aggregate = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestAggregateDeepCascade(t *testing.T) {
	// 256 consecutive /32 host routes collapse through eight merge levels.
	input := make([]Block, 0, 256)
	for i := uint32(0); i < 256; i++ {
		b, err := New(0x01000000|i, 32)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		input = append(input, b)
	}

	got := Aggregate(input)
	if len(got) != 1 || got[0].String() != "1.0.0.0/24" {
		t.Fatalf("Aggregate = %v, want [1.0.0.0/24]", renderAll(got))
	}
}

func TestAggregateProperties(t *testing.T) {
	input := parseAll(t, []string{
		"1.0.0.0/24", "1.0.1.0/24", "1.0.2.0/23", "1.0.4.0/22",
		"10.0.0.0/8", "10.5.0.0/16", "10.5.1.0/24",
		"192.0.2.0/25", "192.0.2.128/25",
		"198.51.100.0/24", "198.51.102.0/24",
		"203.0.113.7/32", "203.0.113.7/32",
	})

	output := Aggregate(input)

	t.Run("coverage preserved", func(t *testing.T) {
		if !sameRanges(coveredRanges(input), coveredRanges(output)) {
			t.Fatalf("output %v does not cover the input ranges", renderAll(output))
		}
	})

	t.Run("no containment or overlap", func(t *testing.T) {
		for i, a := range output {
			for j, b := range output {
				if i == j {
					continue
				}
				if a.Contains(b) {
					t.Fatalf("output block %s contains %s", a, b)
				}
				if i < j && uint64(a.Last()) >= uint64(b.Network()) && uint64(b.Last()) >= uint64(a.Network()) {
					t.Fatalf("output blocks %s and %s overlap", a, b)
				}
			}
		}
	})

	t.Run("no mergeable pair", func(t *testing.T) {
		for _, a := range output {
			for _, b := range output {
				if merged, ok := TryMerge(a, b); ok {
					t.Fatalf("output blocks %s and %s still merge into %s", a, b, merged)
				}
			}
		}
	})

	t.Run("ascending order", func(t *testing.T) {
		for i := 1; i < len(output); i++ {
			if output[i-1].Compare(output[i]) >= 0 {
				t.Fatalf("output out of order at %d: %v", i, renderAll(output))
			}
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		again := Aggregate(output)
		if len(again) != len(output) {
			t.Fatalf("second pass changed the result: %v vs %v", renderAll(again), renderAll(output))
		}
		for i := range again {
			if again[i] != output[i] {
				t.Fatalf("second pass changed the result: %v vs %v", renderAll(again), renderAll(output))
			}
		}
	})
}

func TestAggregateDoesNotModifyInput(t *testing.T) {
	input := parseAll(t, []string{"1.0.1.0/24", "1.0.0.0/24"})
	snapshot := append([]Block(nil), input...)

	Aggregate(input)

	for i := range input {
		if input[i] != snapshot[i] {
			t.Fatal("Aggregate reordered the caller's slice")
		}
	}
}
