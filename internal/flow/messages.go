package flow

// Fixed reply texts for the conversation tracks. Quick-reply message texts
// double as trigger phrases, so changing one here changes routing too.

// Onboarding track.
const (
	onboardingIntroText = "안녕하세요! <3분커리어>입니다. 😊\n\n당신의 커리어 성장을 위해, 몇 가지 질문으로 시작할게요. 편하게 답변해주세요!"

	onboardingConfirmPhrase = "네 알겠습니다!"

	onboardingConfirmRetryText = "온보딩을 시작하려면 '네 알겠습니다!'라고 답변해주세요."

	questionName       = "당신을 어떻게 부르면 될까요? 이름이나 별명을 알려주세요!"
	questionJobTitle   = "좋습니다! 먼저 당신에 대해 알려주세요.\n\n현재 직무는 무엇인가요? (예: 서비스 기획자, 개발자)"
	questionTotalYears = "총 연차는 어떻게 되세요? (예: 5년차, 10년차)"
	questionJobYears   = "현재 직무 연차는 어떻게 되세요? (예: 3년차, 7년차)"
	questionCareerGoal = "앞으로의 커리어 목표는 무엇인가요? (예: 1년 내 PM으로 성장, 특정 기술 전문 자격증 취득)"
	questionProject    = "좋은 목표네요! 지금 어떤 프로젝트를 진행 중이신가요?\n\n현재 진행 중인 프로젝트명과 목표를 알려주세요. 여러 개라면 모두 입력해주세요!\n\n입력 예시는 다음과 같아요:\n✅ 프로젝트명: A 서비스 리뉴얼\n🎯 목표: 재방문율 10% 증가"
	questionRecentWork = "알겠습니다. 이 외에 최근에 주로 하는 업무가 있다면 말씀해주세요. (예: 주간 회의 준비, 새 비즈니스 모델 조사)"

	// questionJobMeaning and questionImportantThing interpolate earlier
	// answers; see OnboardingFlow.
	questionJobMeaningFormat     = "답변 감사합니다! 당신의 직무와 업무를 더 이해하기 위해 질문 드릴게요.\n\n당신에게 %s란 어떤 의미인가요?"
	questionImportantThingFormat = "%s를 할 때 가장 중요하게 생각하는 것은 무엇인가요?"

	onboardingCompleteText = "답변 고맙습니다! 당신의 정보로 <3분커리어>가 최적화되었어요.\n\n내일부터 본격적으로 <3분커리어>를 이용하실 수 있습니다.\n\n매일 아침 맞춤 정보나 질문을 드릴게요!\n\n궁금한 점은 언제든지 질문해주세요. 그럼 내일 만나요! 😊"

	onboardingSaveErrorText = "사용자 정보 저장 중 오류가 발생했습니다. 다시 시도해주세요."

	onboardingResetText = "온보딩 상태에 문제가 있어 초기화했습니다. 다시 시작해주세요."
)

// Work-record track.
const (
	questionWorkContent = "오늘의 기록을 시작할게요! ✍️\n\n오늘은 어떤 업무를 하셨나요? 자유롭게 적어주세요."
	questionMood        = "오늘 하루 기분은 어떠셨나요?"
	questionAchievement = "마지막 질문이에요!\n\n오늘 스스로 잘했다고 생각하는 점이나 성취가 있다면 알려주세요."

	recordNeedOnboardingText = "기록을 시작하기 전에 온보딩을 먼저 완료해주세요!"
	recordAlreadyDoneText    = "오늘의 기록은 이미 완료하셨어요! 내일 다시 만나요. 😊"

	recordCompleteFormat = "오늘의 기록이 저장되었습니다! 🎉\n\n지금까지 %d일 기록하셨어요. 꾸준함이 커리어를 만듭니다!"

	recordSaveErrorText = "기록 저장 중 오류가 발생했습니다. 다시 시도해주세요."
)

// AI-conversation track.
const (
	aiGreetingFormat = "안녕하세요, 반가워요 %s님! 😊\n오늘도 \"3분 커리어\"와 함께하러 오셨군요.\n바로 시작해볼까요?\n\n오늘 어떤 업무를 하셨는지 공유해주실 수 있나요?\n말씀해주시면 이력을 위한 메모로 정리하고, 더 임팩트 있는 표현을 위해 질문도 함께 드릴게요!"

	aiDefaultUserName = "사용자"
)

// thinkingReplies are the immediate filler lines returned while the real
// completion is fetched in the background.
var thinkingReplies = []string{
	"음... 🤔 그건 정말 흥미로운 주제네요! 잠깐 생각해볼게요.",
	"아, 그런 질문이군요! 좀 더 구체적으로 생각해보겠습니다.",
	"흠... 🤔 그 부분에 대해 좀 더 깊이 생각해보고 있어요.",
	"오, 좋은 지적이에요! 잠시 정리해보겠습니다.",
	"그건 정말 중요한 포인트네요. 차근차근 정리해볼게요.",
	"음... 🤔 그 부분에 대해 좀 더 자세히 살펴보겠습니다.",
	"아, 그런 관점도 있군요! 잠깐 생각해보겠습니다.",
	"흥미로운 질문이에요! 좀 더 구체적으로 정리해보겠습니다.",
}

// Welcome branch.
const (
	welcomeNewUserText    = "안녕하세요! 3분커리어 온보딩봇입니다.\n먼저 간단한 정보를 입력해주세요."
	welcomeIncompleteText = "온보딩을 완료해주세요."
	welcomeReturnFormat   = "안녕하세요 %s님!\n오늘도 함께 성장해봐요. 💪\n지금까지 %d일 기록하셨어요.\n\n무엇을 해볼까요?"
)

// Trigger phrases inspected by the dispatcher when no state is live.
const (
	TriggerOnboardingStart  = "온보딩 시작"
	TriggerOnboardingShort  = "온보딩"
	TriggerOnboardingResume = "온보딩 계속"
	TriggerAIStart          = "오늘의 3분 커리어 시작!"
	TriggerAISubstring      = "3분 커리어"
	TriggerRecordStart      = "오늘의 기록"
	TriggerWelcome          = "웰컴"
	TriggerHome             = "메인"
)

// ApologyText is the generic reply for failures nothing else handled.
const ApologyText = "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
