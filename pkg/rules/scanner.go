package rules

import (
	"sort"
	"strings"

	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/logging"
	"github.com/arthur-debert/assetpipe/pkg/matchers"
	"github.com/rs/zerolog"
)

// Scanner resolves chains for every discovered path of a build
type Scanner struct {
	rules  *RuleSet
	logger zerolog.Logger
}

// NewScanner creates a new scanner over a rule set
func NewScanner(rs *RuleSet) *Scanner {
	return &Scanner{
		rules:  rs,
		logger: logging.GetLogger("rules.scanner"),
	}
}

// Scan resolves each path. Unmatched paths are collected and reported in a
// single ErrUnmatchedAsset, so a build lists every offending file at once.
func (s *Scanner) Scan(paths []string) (map[string]Resolution, error) {
	s.logger.Debug().
		Int("pathCount", len(paths)).
		Int("ruleCount", len(s.rules.rules)).
		Msg("Starting scan")

	resolved := make(map[string]Resolution, len(paths))
	var unmatched []string

	for _, p := range paths {
		res, err := s.rules.Resolve(p)
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrUnmatchedAsset) {
				unmatched = append(unmatched, matchers.Normalize(p))
				continue
			}
			return nil, err
		}

		s.logger.Debug().
			Str("path", res.Path).
			Strs("rules", res.Rules).
			Int("steps", len(res.Chain)).
			Msg("Path resolved")
		resolved[res.Path] = res
	}

	if len(unmatched) > 0 {
		sort.Strings(unmatched)
		return nil, errors.Newf(errors.ErrUnmatchedAsset,
			"%d file(s) match no rule: %s", len(unmatched), strings.Join(unmatched, ", ")).
			WithDetail("paths", unmatched)
	}

	s.logger.Debug().Int("resolved", len(resolved)).Msg("Scan complete")
	return resolved, nil
}
