// Package transcript groups parsed transcript rows into completed semesters,
// transfer credit and co-op counts, and merges that history into a planned
// schedule.
package transcript

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dshills/coursecheck/internal/schema"
)

// UnknownTerm labels transcript rows with a blank semester.
const UnknownTerm = "Unknown"

// DefaultCompletedCoopGrades are the grades that mark a co-op as finished.
// "P" is deliberately absent: on degree-plan transcripts it marks a planned
// co-op rather than a pass. That reading needs product confirmation, which
// is why the set is configurable.
var DefaultCompletedCoopGrades = []string{
	"S", "A", "A-", "A+", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "D-", "CR",
}

// Options configures Group.
type Options struct {
	CompletedCoopGrades []string
	// SplitSummer makes nextSemester follow Spring with Summer 1.
	SplitSummer bool
}

// DefaultOptions returns the grouping options used when none are configured.
func DefaultOptions() Options {
	return Options{CompletedCoopGrades: append([]string(nil), DefaultCompletedCoopGrades...)}
}

var transferRe = regexp.MustCompile(`(?i)transfer|advanced placement|\bap\b|\bib\b|clep|test credit|exam credit`)

// IsCoopCourse reports whether c is a co-op work-experience entry.
func IsCoopCourse(c schema.CompletedCourse) bool {
	if strings.HasPrefix(schema.NormalizeCode(c.Code), "COOP") {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), "co-op work experience")
}

// IsTransfer reports whether c's semester marks transfer, AP, IB, CLEP or
// other test credit.
func IsTransfer(c schema.CompletedCourse) bool {
	return transferRe.MatchString(c.Semester)
}

// IsCompletedCoop reports whether grade marks a finished co-op under o.
func (o Options) IsCompletedCoop(grade string) bool {
	g := strings.ToUpper(strings.TrimSpace(grade))
	if g == "" {
		return false
	}
	grades := o.CompletedCoopGrades
	if grades == nil {
		grades = DefaultCompletedCoopGrades
	}
	for _, want := range grades {
		if strings.EqualFold(want, g) {
			return true
		}
	}
	return false
}

// Group partitions transcript rows into co-op, transfer and ordinary
// courses and groups the ordinary ones by term in chronological order.
// Terms that do not parse sort after the parseable ones, in first-seen
// order. Completed and transfer credit totals are disjoint.
func Group(courses []schema.CompletedCourse, opts Options) schema.TranscriptData {
	data := schema.TranscriptData{
		CompletedSemesters: []schema.CompletedSemesterData{},
		TransferCredits:    []schema.Course{},
	}

	type group struct {
		sem   schema.CompletedSemesterData
		key   int
		ok    bool
		order int
	}
	var groups []*group
	byTerm := make(map[string]*group)
	var coops []string

	for _, c := range courses {
		if IsCoopCourse(c) {
			if opts.IsCompletedCoop(c.Grade) {
				data.CompletedCoops++
				if term := schema.CanonicalTerm(c.Semester); term != "" {
					coops = append(coops, term)
				}
			}
			continue
		}
		if IsTransfer(c) {
			data.TransferCredits = append(data.TransferCredits, schema.Course{
				Code:    strings.TrimSpace(c.Code),
				Name:    strings.TrimSpace(c.Name),
				Credits: c.Credits,
			})
			data.TotalTransferCredits += c.Credits
			continue
		}

		term := schema.CanonicalTerm(c.Semester)
		if term == "" {
			term = UnknownTerm
		}
		g, found := byTerm[term]
		if !found {
			key, ok := schema.TermSortKey(term)
			g = &group{sem: schema.CompletedSemesterData{Term: term}, key: key, ok: ok, order: len(groups)}
			byTerm[term] = g
			groups = append(groups, g)
		}
		c.Semester = term
		g.sem.Courses = append(g.sem.Courses, c)
		g.sem.TotalCredits += c.Credits
		data.TotalCompletedCredits += c.Credits
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.ok != b.ok {
			return a.ok
		}
		if a.ok {
			return a.key < b.key
		}
		return a.order < b.order
	})

	var last schema.Term
	haveLast := false
	for _, g := range groups {
		data.CompletedSemesters = append(data.CompletedSemesters, g.sem)
		if t, ok := schema.ParseTerm(g.sem.Term); ok {
			last, haveLast = t, true
		}
	}
	if haveLast {
		data.LastCompletedTerm = last.String()
		next := last.Next(opts.SplitSummer).String()
		data.NextSemester = &next
	}

	sortTerms(coops)
	data.CoopTerms = coops
	return data
}

// sortTerms orders term labels chronologically, unparseable labels last.
func sortTerms(terms []string) {
	sort.SliceStable(terms, func(i, j int) bool {
		a, aok := schema.TermSortKey(terms[i])
		b, bok := schema.TermSortKey(terms[j])
		if aok != bok {
			return aok
		}
		return aok && a < b
	})
}
