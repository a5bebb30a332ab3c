package flow

import "testing"

func TestExtractJobTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"polite ending stripped", "서비스 기획자입니다.", "서비스 기획자"},
		{"casual ending stripped", "개발자예요라고 해도 되는데 개발자이에요", "개발자예요라고 해도 되는데 개발자"},
		{"bare answer unchanged", "백엔드 개발자", "백엔드 개발자"},
		{"whitespace trimmed", "  PM  ", "PM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJobTitle(tt.input); got != tt.want {
				t.Errorf("ExtractJobTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractYears(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain years", "5년차", "5년차"},
		{"years with suffix", "10년차입니다", "10년차"},
		{"years without cha", "3년 정도 했어요", "3년차"},
		{"spaced", "7 년차", "7년차"},
		{"no digits falls back", "꽤 오래", "꽤 오래"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractYears(tt.input); got != tt.want {
				t.Errorf("ExtractYears(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractProjectName(t *testing.T) {
	input := "프로젝트명: A 서비스 리뉴얼\n목표: 재방문율 10% 증가"
	want := "A 서비스 리뉴얼\n재방문율 10% 증가"
	if got := ExtractProjectName(input); got != want {
		t.Errorf("ExtractProjectName(%q) = %q, want %q", input, got, want)
	}
}

func TestExtractRecentWork(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"주간 회의 준비를 주로 합니다.", "주간 회의 준비"},
		{"데이터 분석을 합니다", "데이터 분석을"},
		{"새 비즈니스 모델 조사", "새 비즈니스 모델 조사"},
	}
	for _, tt := range tests {
		if got := ExtractRecentWork(tt.input); got != tt.want {
			t.Errorf("ExtractRecentWork(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExtractJobMeaning(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"성장의 발판이라고 생각해요.", "성장의 발판이"},
		{"문제를 해결하는 일입니다", "문제를 해결하는 일"},
		{"즐거움", "즐거움"},
	}
	for _, tt := range tests {
		if got := ExtractJobMeaning(tt.input); got != tt.want {
			t.Errorf("ExtractJobMeaning(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExtractionIdempotent(t *testing.T) {
	// Running a helper on its own output must not change it further.
	inputs := []string{"서비스 기획자입니다.", "5년차입니다", "주간 회의 준비를 합니다."}
	for _, in := range inputs {
		once := ExtractJobTitle(in)
		if twice := ExtractJobTitle(once); twice != once {
			t.Errorf("ExtractJobTitle not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestExtractionNeverEmpty(t *testing.T) {
	// Cleanup that removes everything falls back to the trimmed original.
	if got := ExtractCareerGoal("입니다"); got != "입니다" {
		t.Errorf("ExtractCareerGoal fallback = %q, want original", got)
	}
}
