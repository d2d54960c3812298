// Package analyze runs the ingest pipeline: archives in the input
// directory are extracted, decoded, parsed and filtered into one sorted
// message table.
package analyze

import (
	"fmt"

	"github.com/Zuo-Peng/wa-contacts/internal/collect"
	"github.com/Zuo-Peng/wa-contacts/internal/decode"
	"github.com/Zuo-Peng/wa-contacts/internal/parse"
	"github.com/Zuo-Peng/wa-contacts/internal/scan"
	"github.com/rs/zerolog"
)

type Options struct {
	InputDir  string
	Criteria  collect.Criteria
	Encodings []string
}

type Stats struct {
	Archives      int
	ArchiveErrors int
	Sources       int
	DecodeErrors  int
	Lines         int
	Messages      int
}

func (s Stats) String() string {
	return fmt.Sprintf("archives=%d archive_errors=%d sources=%d decode_errors=%d lines=%d messages=%d",
		s.Archives, s.ArchiveErrors, s.Sources, s.DecodeErrors, s.Lines, s.Messages)
}

// SourceReport is what happened to one source; Err is set when the source
// was skipped.
type SourceReport struct {
	collect.SourceStats
	Encoding string
	Err      error
}

type Result struct {
	Messages []parse.Message
	Sources  []SourceReport
	Stats    Stats
}

// Run processes every archive in opts.InputDir. Only setup problems (the
// input directory, an unknown encoding name) are returned as errors; a
// broken archive or an undecodable source is logged, counted and skipped.
func Run(opts Options, log zerolog.Logger) (*Result, error) {
	resolver, err := decode.NewResolver(opts.Encodings, log)
	if err != nil {
		return nil, fmt.Errorf("encodings: %w", err)
	}

	archives, err := scan.ScanArchives(opts.InputDir)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	res.Stats.Archives = len(archives)
	col := collect.New(opts.Criteria, log)

	for _, a := range archives {
		sources, err := scan.Extract(a)
		if err != nil {
			res.Stats.ArchiveErrors++
			log.Error().Str("archive", a.Name).Err(err).Msg("error extracting archive")
			continue
		}
		log.Info().Str("archive", a.Name).Int("chats", len(sources)).Msg("extracted archive")

		for _, src := range sources {
			res.Stats.Sources++
			res.Sources = append(res.Sources, processSource(resolver, col, src, &res.Stats))
		}
	}

	res.Messages = col.Table()
	res.Stats.Messages = len(res.Messages)
	return res, nil
}

func processSource(resolver *decode.Resolver, col *collect.Collector, src scan.Source, stats *Stats) SourceReport {
	label := src.Label()
	decoded, err := resolver.Decode(label, src.Data)
	if err != nil {
		stats.DecodeErrors++
		return SourceReport{SourceStats: collect.SourceStats{Source: label}, Err: err}
	}

	s := col.Add(label, decoded.Lines)
	stats.Lines += s.Lines
	return SourceReport{SourceStats: s, Encoding: decoded.Encoding}
}
