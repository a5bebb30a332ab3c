package flow

import (
	"regexp"
	"strings"
)

// Extraction helpers strip filler suffixes from free-text answers before the
// profile upsert. Each helper is idempotent and total: input that does not
// match the expected pattern comes back trimmed but otherwise unchanged.

var (
	politeSuffixRe = regexp.MustCompile(`입니다\.?|이에요\.?`)
	yearsRe        = regexp.MustCompile(`(\d+)\s*년\s*차?`)
	projectLabelRe = regexp.MustCompile(`프로젝트명\s*:\s*|목표\s*:\s*`)
	recentWorkRe   = regexp.MustCompile(`를\s*주로\s*합니다\.?|를\s*합니다\.?|합니다\.?`)
	thinkSuffixRe  = regexp.MustCompile(`라고\s*생각해요\.?|라고\s*생각합니다\.?`)
)

// ExtractJobTitle strips polite endings from a job title answer.
func ExtractJobTitle(text string) string {
	return fallbackTrim(politeSuffixRe.ReplaceAllString(text, ""), text)
}

// ExtractYears normalizes a years-of-experience answer to "N년차".
func ExtractYears(text string) string {
	if m := yearsRe.FindStringSubmatch(text); m != nil {
		return m[1] + "년차"
	}
	return strings.TrimSpace(text)
}

// ExtractCareerGoal strips polite endings from a career goal answer.
func ExtractCareerGoal(text string) string {
	return fallbackTrim(politeSuffixRe.ReplaceAllString(text, ""), text)
}

// ExtractProjectName strips "프로젝트명:" and "목표:" labels from a project answer.
func ExtractProjectName(text string) string {
	return fallbackTrim(projectLabelRe.ReplaceAllString(text, ""), text)
}

// ExtractRecentWork strips "~를 합니다" style endings from a recent-work answer.
func ExtractRecentWork(text string) string {
	return fallbackTrim(recentWorkRe.ReplaceAllString(text, ""), text)
}

// ExtractJobMeaning strips "~라고 생각해요" style endings from a job-meaning answer.
func ExtractJobMeaning(text string) string {
	cleaned := thinkSuffixRe.ReplaceAllString(text, "")
	cleaned = politeSuffixRe.ReplaceAllString(cleaned, "")
	return fallbackTrim(cleaned, text)
}

// fallbackTrim returns the cleaned text trimmed, or the trimmed original when
// cleanup removed everything.
func fallbackTrim(cleaned, original string) string {
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return strings.TrimSpace(original)
	}
	return cleaned
}
