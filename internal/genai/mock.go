package genai

import "strings"

// mockReplies are the canned assistant replies used when no API key is set.
var mockReplies = []string{
	"정말 흥미로운 이야기네요! 그 업무에서 어떤 부분이 가장 도전적이었나요?",
	"좋은 경험이군요! 그 결과로 어떤 성과를 얻으셨나요?",
	"흥미로운 프로젝트네요! 그 과정에서 배운 점이 있다면 무엇인가요?",
	"훌륭한 업무 경험이에요! 이런 경험을 이력서에 어떻게 표현하면 좋을까요?",
	"정말 의미 있는 작업이었네요! 그 업무의 핵심 가치는 무엇이라고 생각하시나요?",
	"좋은 질문이에요! 그 부분에 대해 좀 더 구체적으로 설명해주실 수 있나요?",
	"흥미로운 관점이네요! 그런 경험을 통해 어떤 인사이트를 얻으셨나요?",
	"훌륭한 성과군요! 그 성과를 달성하기 위해 어떤 노력을 하셨나요?",
}

// keywordReply pairs topic keywords with a tailored canned reply.
// Rules are evaluated in order; the first match wins.
type keywordReply struct {
	keywords []string
	reply    string
}

var keywordReplies = []keywordReply{
	{
		keywords: []string{"프로젝트", "개발"},
		reply:    "개발 프로젝트 경험이군요! 어떤 기술 스택을 사용하셨고, 그 과정에서 어떤 도전과제가 있었나요?",
	},
	{
		keywords: []string{"회의", "미팅"},
		reply:    "회의나 미팅 관련 업무네요! 그 과정에서 어떤 역할을 하셨고, 어떤 결과를 얻으셨나요?",
	},
	{
		keywords: []string{"분석", "데이터"},
		reply:    "데이터 분석 업무군요! 어떤 도구를 사용하셨고, 그 결과로 어떤 인사이트를 얻으셨나요?",
	},
	{
		keywords: []string{"고객", "서비스"},
		reply:    "고객 서비스 관련 업무네요! 그 과정에서 어떤 문제를 해결하셨고, 고객에게 어떤 가치를 제공하셨나요?",
	},
}

// mockReply returns a deterministic canned reply for a message: keyword rules
// first, otherwise a reply picked by the message length.
func mockReply(message string) string {
	for _, rule := range keywordReplies {
		for _, kw := range rule.keywords {
			if strings.Contains(message, kw) {
				return rule.reply
			}
		}
	}
	return mockReplies[len([]rune(message))%len(mockReplies)]
}
