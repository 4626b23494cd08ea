package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dshills/coursecheck/internal/schema"
)

// Field aliases seen in agent output. Keys are compared after lower-casing
// and dropping '_', '-' and spaces.
var (
	schoolAliases         = []string{"school", "university", "institution", "schoolname", "college"}
	majorAliases          = []string{"major", "program", "majorname", "programname"}
	degreeAliases         = []string{"degree", "degreetype"}
	startTermAliases      = []string{"startterm", "startsemester", "start"}
	graduationTermAliases = []string{"graduationterm", "gradterm", "expectedgraduation", "graduation", "endterm"}
	planCreditAliases     = []string{"totalcredits", "creditsrequired", "requiredcredits", "totalcreditsrequired"}
	semestersKeys         = []string{"semesters", "schedule", "terms", "plan"}
	warningAliases        = []string{"warnings", "notes"}
	sourceAliases         = []string{"sourceurl", "catalogurl", "source"}
	contextAliases        = []string{"studentcontext"}
	transferAliases       = []string{"transfercredits"}
	wrapperKeys           = []string{"schedule", "plan", "data", "result", "scheduleplan"}

	termAliases          = []string{"term", "semester", "name", "period", "label"}
	typeAliases          = []string{"type", "kind", "semestertype"}
	coursesAliases       = []string{"courses", "classes", "courselist"}
	semesterCreditAlias  = []string{"totalcredits", "credits", "credithours", "semestercredits"}
	coopNumberAliases    = []string{"coopnumber", "coop", "coopnum"}
	statusAliases        = []string{"status", "state"}
	courseCodeAliases    = []string{"code", "coursecode", "coursenumber", "number", "id"}
	courseNameAliases    = []string{"name", "title", "coursename", "coursetitle"}
	courseCreditAliases  = []string{"credits", "credithours", "credit", "units", "hours", "sh"}
	courseOptionsAliases = []string{"options", "examples", "choices", "alternatives"}
)

func canonicalKey(k string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, k)
}

// lookup returns the value of the first alias present in m. Exact key matches
// win over canonicalized matches.
func lookup(m map[string]any, aliases ...string) (any, bool) {
	for _, a := range aliases {
		if v, ok := m[a]; ok && v != nil {
			return v, true
		}
	}
	for _, a := range aliases {
		for k, v := range m {
			if v != nil && canonicalKey(k) == a {
				return v, true
			}
		}
	}
	return nil, false
}

// semestersValue returns the semesters field as a list, parsing it first
// when it arrives as a JSON string.
func semestersValue(m map[string]any) ([]any, bool) {
	for _, a := range semestersKeys {
		v, ok := lookup(m, a)
		if !ok {
			continue
		}
		if list, ok := asList(v); ok {
			return list, true
		}
	}
	return nil, false
}

// unwrap descends into a wrapper object such as {"schedule": {...}} when m has
// no semesters of its own. Outer plan-level fields fill gaps in the inner one.
func unwrap(m map[string]any) map[string]any {
	for depth := 0; depth < 3; depth++ {
		if _, ok := semestersValue(m); ok {
			return m
		}
		key, inner := wrapperObject(m)
		if inner == nil {
			return m
		}
		merged := make(map[string]any, len(inner)+len(m))
		for k, v := range m {
			if k != key {
				merged[k] = v
			}
		}
		for k, v := range inner {
			merged[k] = v
		}
		m = merged
	}
	return m
}

// wrapperObject returns the key and value of the first wrapper field in m
// holding an object.
func wrapperObject(m map[string]any) (string, map[string]any) {
	for _, w := range wrapperKeys {
		for k, v := range m {
			if canonicalKey(k) != w {
				continue
			}
			if obj, ok := asObject(v); ok {
				return k, obj
			}
		}
	}
	return "", nil
}

func asObject(v any) (map[string]any, bool) {
	switch x := v.(type) {
	case map[string]any:
		return x, true
	case string:
		if !strings.HasPrefix(strings.TrimSpace(stripMarkdownFences(x)), "{") {
			return nil, false
		}
		return parseObject(stripMarkdownFences(x))
	}
	return nil, false
}

func asList(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case string:
		parsed, ok := parseJSON(stripMarkdownFences(x))
		if !ok {
			return nil, false
		}
		list, ok := parsed.([]any)
		return list, ok
	}
	return nil, false
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

var leadingNumberRe = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)`)

// asInt coerces numbers and numeric strings ("4", "4.0", "4 credits").
func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		return int(math.Round(x)), true
	case int:
		return x, true
	case string:
		m := leadingNumberRe.FindStringSubmatch(x)
		if m == nil {
			return 0, false
		}
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return int(math.Round(f)), true
	}
	return 0, false
}

func stringField(m map[string]any, aliases ...string) string {
	v, ok := lookup(m, aliases...)
	if !ok {
		return ""
	}
	return asString(v)
}

func decodePlan(doc map[string]any) schema.SchedulePlan {
	doc = unwrap(doc)
	p := schema.SchedulePlan{
		School:         stringField(doc, schoolAliases...),
		Major:          stringField(doc, majorAliases...),
		Degree:         stringField(doc, degreeAliases...),
		StartTerm:      schema.CanonicalTerm(stringField(doc, startTermAliases...)),
		GraduationTerm: schema.CanonicalTerm(stringField(doc, graduationTermAliases...)),
		SourceURL:      stringField(doc, sourceAliases...),
		StudentContext: stringField(doc, contextAliases...),
		Semesters:      []schema.Semester{},
		Warnings:       []string{},
	}
	if v, ok := lookup(doc, planCreditAliases...); ok {
		if n, ok := asInt(v); ok {
			p.TotalCredits = n
		}
	}
	if v, ok := lookup(doc, warningAliases...); ok {
		if list, ok := asList(v); ok {
			for _, w := range list {
				if s := asString(w); s != "" {
					p.Warnings = append(p.Warnings, s)
				}
			}
		} else if s := asString(v); s != "" {
			p.Warnings = append(p.Warnings, s)
		}
	}
	if v, ok := lookup(doc, transferAliases...); ok {
		if list, ok := asList(v); ok {
			p.TransferCredits = decodeCourses(list)
		}
	}

	raw, ok := semestersValue(doc)
	if !ok {
		if _, present := lookup(doc, semestersKeys...); present {
			p.Warnings = append(p.Warnings, "Semesters field could not be parsed; schedule is empty")
		}
		return p
	}
	coops := 0
	for _, item := range raw {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		s := decodeSemester(obj)
		if s.IsCoop() {
			coops++
			if s.CoopNumber <= 0 {
				s.CoopNumber = coops
			}
		}
		p.Semesters = append(p.Semesters, s)
	}
	return p
}

func decodeSemester(m map[string]any) schema.Semester {
	s := schema.Semester{
		Term:   schema.CanonicalTerm(stringField(m, termAliases...)),
		Status: canonicalStatus(stringField(m, statusAliases...)),
	}
	if v, ok := lookup(m, coopNumberAliases...); ok {
		if n, ok := asInt(v); ok {
			s.CoopNumber = n
		}
	}
	var courses []schema.Course
	hasCourses := false
	if v, ok := lookup(m, coursesAliases...); ok {
		if list, ok := asList(v); ok {
			courses = decodeCourses(list)
			hasCourses = true
		}
	}

	s.Type = canonicalType(stringField(m, typeAliases...), s, hasCourses && len(courses) > 0)
	if s.IsCoop() {
		return s
	}
	s.CoopNumber = 0
	s.Courses = courses
	if s.Courses == nil {
		s.Courses = []schema.Course{}
	}
	s.TotalCredits = schema.SumCredits(s.Courses)
	if v, ok := lookup(m, semesterCreditAlias...); ok {
		if n, ok := asInt(v); ok {
			s.TotalCredits = n
		}
	}
	return s
}

var coopWordRe = regexp.MustCompile(`(?i)\bco-?op\b|\bcooperative\b`)

// canonicalType collapses the spellings producers use for a co-op term
// ("coop", "co-op", "Co-Op", "work") into one tag. Untyped semesters are
// co-ops only when they carry a co-op number or a co-op label and no courses.
func canonicalType(raw string, s schema.Semester, hasCourses bool) schema.SemesterType {
	switch canonicalKey(raw) {
	case "coop", "cooperative", "work", "workterm", "coopterm", "internship":
		return schema.SemesterCoop
	case "":
		if hasCourses {
			return schema.SemesterAcademic
		}
		if s.CoopNumber > 0 || coopWordRe.MatchString(s.Term) {
			return schema.SemesterCoop
		}
	}
	return schema.SemesterAcademic
}

func canonicalStatus(raw string) schema.SemesterStatus {
	switch canonicalKey(raw) {
	case "completed", "complete", "done", "taken", "finished":
		return schema.StatusCompleted
	case "planned", "plan", "future", "upcoming", "scheduled":
		return schema.StatusPlanned
	}
	return ""
}

func decodeCourses(list []any) []schema.Course {
	out := make([]schema.Course, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case map[string]any:
			out = append(out, decodeCourse(v))
		case string:
			if obj, ok := asObject(v); ok {
				out = append(out, decodeCourse(obj))
				continue
			}
			if c, ok := parseCourseLine(v); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

func decodeCourse(m map[string]any) schema.Course {
	c := schema.Course{
		Code: stringField(m, courseCodeAliases...),
		Name: stringField(m, courseNameAliases...),
	}
	if v, ok := lookup(m, courseCreditAliases...); ok {
		if n, ok := asInt(v); ok {
			c.Credits = n
		}
	}
	if v, ok := lookup(m, courseOptionsAliases...); ok {
		c.Options = joinOptions(v)
	}
	return c
}

// joinOptions flattens an options list, which may hold strings or course
// objects, into one comma-separated string.
func joinOptions(v any) string {
	list, ok := v.([]any)
	if !ok {
		return asString(v)
	}
	parts := make([]string, 0, len(list))
	for _, item := range list {
		var s string
		if obj, ok := item.(map[string]any); ok {
			code := stringField(obj, courseCodeAliases...)
			name := stringField(obj, courseNameAliases...)
			switch {
			case code != "" && name != "":
				s = code + " " + name
			case code != "":
				s = code
			default:
				s = name
			}
		} else {
			s = asString(item)
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// courseLineRe matches one-line course strings such as
// "CS 1800 - Discrete Structures (4 credits)".
var courseLineRe = regexp.MustCompile(`^([A-Za-z]{2,8}\s*\d{3,4}[A-Za-z]?)\s*[-:–]?\s*(.*?)\s*(?:\((\d+)\s*(?:cr|credits?|sh|hours?)?\))?$`)

func parseCourseLine(s string) (schema.Course, bool) {
	m := courseLineRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return schema.Course{}, false
	}
	c := schema.Course{Code: strings.TrimSpace(m[1]), Name: strings.TrimSpace(m[2])}
	if m[3] != "" {
		c.Credits, _ = strconv.Atoi(m[3])
	}
	return c, true
}
