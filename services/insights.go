package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"airbnb-pricer/models"
	"airbnb-pricer/utils"
)

const topNeighbourhoods = 5

// SummaryService computes and prints statistics over an encoded dataset.
type SummaryService struct {
	logger *utils.Logger
	out    io.Writer
}

// NewSummaryService creates a SummaryService that prints to stdout.
func NewSummaryService(logger *utils.Logger) *SummaryService {
	if logger == nil {
		logger = utils.Nop()
	}
	return &SummaryService{logger: logger, out: os.Stdout}
}

// SetOutput redirects Print.
func (s *SummaryService) SetOutput(w io.Writer) { s.out = w }

// Generate summarises a pipeline result.
func (s *SummaryService) Generate(source string, res *Result) *models.DatasetSummary {
	sum := &models.DatasetSummary{
		Source:    source,
		RoomTypes: make(map[string]int),
	}
	if res == nil || res.Table == nil {
		return sum
	}

	t := res.Table
	sum.RawRows = res.RawRows
	sum.EncodedRows = t.Len()
	sum.DroppedRows = res.DroppedRows
	sum.Features = t.Width() - 1

	if target, err := t.Column(models.TargetColumn); err == nil && len(target.Cells) > 0 {
		sum.MinTarget = target.Cells[0].Num
		sum.MaxTarget = target.Cells[0].Num
		var total float64
		for _, c := range target.Cells {
			total += c.Num
			if c.Num < sum.MinTarget {
				sum.MinTarget = c.Num
			}
			if c.Num > sum.MaxTarget {
				sum.MaxTarget = c.Num
			}
		}
		sum.AverageTarget = round2(total / float64(len(target.Cells)))
		sum.MinTarget = round2(sum.MinTarget)
		sum.MaxTarget = round2(sum.MaxTarget)
	}

	if rooms, err := t.Column(models.ColRoomType); err == nil {
		labels := make(map[float64]string, len(RoomTypeMap))
		for name, code := range RoomTypeMap {
			labels[code] = name
		}
		for _, c := range rooms.Cells {
			if name, ok := labels[c.Num]; ok {
				sum.RoomTypes[name]++
			}
		}
	}

	for _, name := range res.Frequencies.Keys() {
		sum.TopNeighbourhoods = append(sum.TopNeighbourhoods, models.NeighbourhoodCount{Name: name, Count: res.Frequencies[name]})
	}
	sort.SliceStable(sum.TopNeighbourhoods, func(i, j int) bool {
		return sum.TopNeighbourhoods[i].Count > sum.TopNeighbourhoods[j].Count
	})
	if len(sum.TopNeighbourhoods) > topNeighbourhoods {
		sum.TopNeighbourhoods = sum.TopNeighbourhoods[:topNeighbourhoods]
	}

	s.logger.Debug().Str("source", source).Int("rows", sum.EncodedRows).Msg("[insights] Summary generated")
	return sum
}

// Print renders a summary as a terminal report.
func (s *SummaryService) Print(r *models.DatasetSummary) {
	w := s.out
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 LISTING FEATURES: %s\033[0m\n", truncate(r.Source, 30))
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Raw listings     : \033[1m%d\033[0m\n", r.RawRows)
	fmt.Fprintf(w, "  Encoded listings : \033[1m%d\033[0m\n", r.EncodedRows)
	fmt.Fprintf(w, "  Dropped (no host): \033[1m%d\033[0m\n", r.DroppedRows)
	fmt.Fprintf(w, "  Feature columns  : \033[1m%d\033[0m\n", r.Features)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Target Price (per night)\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.EncodedRows > 0 {
		fmt.Fprintf(w, "  Average price : \033[1;32m%.2f\033[0m\n", r.AverageTarget)
		fmt.Fprintf(w, "  Minimum price : \033[1;32m%.2f\033[0m\n", r.MinTarget)
		fmt.Fprintf(w, "  Maximum price : \033[1;32m%.2f\033[0m\n", r.MaxTarget)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Room Types\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	rooms := make([]string, 0, len(r.RoomTypes))
	for name := range r.RoomTypes {
		rooms = append(rooms, name)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return RoomTypeMap[rooms[i]] > RoomTypeMap[rooms[j]]
	})
	for _, name := range rooms {
		fmt.Fprintf(w, "  %-20s %d\n", name, r.RoomTypes[name])
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Top Neighbourhoods\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopNeighbourhoods) == 0 {
		fmt.Fprintf(w, "  No neighbourhood data\n")
	}
	for i, n := range r.TopNeighbourhoods {
		fmt.Fprintf(w, "  \033[1m%d.\033[0m %-36s %d\n", i+1, truncate(n.Name, 34), n.Count)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
