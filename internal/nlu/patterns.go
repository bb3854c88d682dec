package nlu

import "github.com/RivenKid69/crm-sales-bot/internal/model"

// intentPattern is one registered classification rule. Roots match token
// prefixes; phrases match consecutive token prefixes. Registration order
// breaks ties within a tier.
type intentPattern struct {
	intent  model.Intent
	roots   []string
	phrases [][]string
}

// intentPatterns is the pattern registry, ordered by tier and then by
// registration priority within the tier. The dictionary is data so it can be
// extended and tested independently of the matching engine.
var intentPatterns = []intentPattern{
	// Tier 0 — always-answer questions. pricing_details is registered before
	// price_question so that "что входит в цену" wins over the bare price ask.
	{
		intent: model.IntentPricingDetails,
		roots:  []string{"скидк", "рассрочк"},
		phrases: [][]string{
			{"что", "входит"},
			{"за", "пользовател"},
			{"за", "одного"},
			{"услови", "оплат"},
			{"способ", "оплат"},
			{"прайс", "лист"},
		},
	},
	{
		intent: model.IntentPriceQuestion,
		roots:  []string{"стоит", "стоимост", "цен", "ценник", "прайс", "тариф", "обойд", "почем", "расценк"},
	},
	{
		intent: model.IntentQuestionIntegrations,
		roots:  []string{"интеграци", "интегрир", "синхрон", "api", "каспи", "kaspi", "подключает"},
		phrases: [][]string{
			{"работаете", "с"},
			{"есть", "интеграци"},
		},
	},
	{
		intent: model.IntentComparison,
		roots:  []string{"сравн", "отлича", "против"},
		phrases: [][]string{
			{"чем", "лучше"},
			{"почему", "вас"},
			{"почему", "вы"},
			{"вы", "или"},
		},
	},
	{
		intent: model.IntentQuestionFeatures,
		roots:  []string{"функци", "возможност", "фич", "умеет"},
		phrases: [][]string{
			{"как", "работает"},
			{"что", "такое"},
			{"как", "это", "работает"},
			{"что", "вы", "делаете"},
		},
	},

	// Tier 1 — rejection.
	{
		intent: model.IntentRejection,
		roots:  []string{"неинтерес", "спам", "отстан", "отпиш", "отписат", "прекрат", "мимо"},
		phrases: [][]string{
			{"не", "интерес"},
			{"не", "нужн"},
			{"не", "надо"},
			{"не", "хочу"},
			{"не", "хотим"},
			{"не", "пиш"},
			{"не", "звон"},
			{"больше", "не"},
			{"удалите", "меня"},
		},
	},

	// Tier 3 — state-specific signals. Objections first: they carry more
	// weight near presentation and close.
	{
		intent: model.IntentObjectionPrice,
		roots:  []string{"дорог", "дорогов"},
		phrases: [][]string{
			{"нет", "бюджет"},
			{"бюджета", "нет"},
			{"нет", "денег"},
			{"денег", "нет"},
			{"не", "потянем"},
			{"не", "по", "карману"},
		},
	},
	{
		intent: model.IntentObjectionNoTime,
		roots:  []string{"некогда", "занят", "позже", "потом"},
		phrases: [][]string{
			{"нет", "времени"},
			{"не", "сейчас"},
			{"не", "вовремя"},
		},
	},
	{
		intent: model.IntentObjectionThink,
		roots:  []string{"подума", "посовещ", "посовету"},
		phrases: [][]string{
			{"надо", "обсуд"},
			{"нужно", "обсуд"},
		},
	},
	{
		intent: model.IntentObjectionCompetitor,
		roots:  []string{"битрикс", "amocrm", "амо", "мегаплан", "iiko"},
		phrases: [][]string{
			{"уже", "есть"},
			{"уже", "использу"},
			{"уже", "работаем"},
		},
	},
	{
		intent: model.IntentDemoRequest,
		roots:  []string{"демо", "пробн", "триал", "демонстрац"},
	},
	{
		intent: model.IntentCallbackRequest,
		roots:  []string{"перезвон", "позвон", "набер", "созвон", "звонок"},
		phrases: [][]string{
			{"свяжитесь", "со"},
			{"запишите", "номер"},
		},
	},
	{
		intent: model.IntentConsultationRequest,
		roots:  []string{"консульт", "проконсульт"},
		phrases: [][]string{
			{"помогите", "разобрат"},
			{"посоветуйте", "что"},
			{"помогите", "выбрат"},
		},
	},

	// Tier 4 — generic transitions.
	{
		intent: model.IntentGreeting,
		roots:  []string{"привет", "здравству", "здравствуй", "салют"},
		phrases: [][]string{
			{"добрый", "день"},
			{"добрый", "вечер"},
			{"доброе", "утро"},
		},
	},
	{
		intent: model.IntentFarewell,
		roots:  []string{"прощай", "свидани"},
		phrases: [][]string{
			{"до", "свидани"},
			{"до", "связи"},
			{"всего", "доброго"},
		},
	},
	{
		intent: model.IntentGratitude,
		roots:  []string{"спасибо", "благодар"},
	},
	{
		intent: model.IntentSmallTalk,
		phrases: [][]string{
			{"как", "дела"},
			{"как", "жизнь"},
			{"как", "настроение"},
			{"как", "вы"},
		},
	},
	{
		intent: model.IntentAgreement,
		roots:  []string{"давай", "давайте", "согла", "конечно", "хорошо", "интерес", "расскаж", "подробн", "готов", "попробу", "понятно", "отлично"},
		phrases: [][]string{
			{"да", "интересно"},
			{"хочу", "узнать"},
		},
	},
}

// farewellToken and similar bare answers are matched exactly, not by prefix,
// to keep "пока" from swallowing "показатели".
var exactTokenIntents = map[string]model.Intent{
	"пока": model.IntentFarewell,
	"да":   model.IntentAgreement,
	"ага":  model.IntentAgreement,
	"угу":  model.IntentAgreement,
}

// negationTokens are bare negative answers; their meaning depends on context
// (rejection by default, no_problem inside the problem phase).
var negationTokens = map[string]bool{
	"нет": true,
	"неа": true,
}

// positiveRoots flag clarification utterances: a leading "нет" followed by
// one of these is a redirect, not a rejection ("нет, расскажите подробнее").
var positiveRoots = []string{"интерес", "расскаж", "подробн", "хочу", "хотим", "давай", "узнать", "покаж"}

// typoFixes normalizes common typos, slang and wrong-keyboard-layout words to
// their canonical spelling before root reduction. Values may contain spaces.
var typoFixes = map[string]string{
	// price
	"скока": "сколько", "скоко": "сколько", "ценик": "ценник",
	"прайсик": "прайс", "тарифчик": "тариф",
	// greetings / farewells
	"прив": "привет", "хай": "привет", "хаюшки": "привет",
	"здрасте": "здравствуйте", "дратути": "здравствуйте",
	"покеда": "пока", "бай": "пока", "удачки": "удачи",
	// slang
	"че": "что", "чо": "что", "щас": "сейчас", "ваще": "вообще",
	"норм": "нормально", "ок": "хорошо", "окей": "хорошо",
	"спс": "спасибо", "пасиб": "спасибо", "плиз": "пожалуйста", "пж": "пожалуйста",
	"точняк": "точно", "канеш": "конечно",
	"ноуп": "нет", "врятли": "вряд ли",
	"збс": "отлично", "огонь": "отлично", "топчик": "отлично",
	"кайф": "хорошо", "хз": "не знаю",
	// business terms
	"црмка": "crm", "црм": "crm", "битрик": "битрикс", "манагер": "менеджер",
	// keyboard layout (typed in EN while meaning RU)
	"ghbdtn": "привет", "wtyf": "цена", "ghfqc": "прайс", "lf": "да", "ytn": "нет",
}

// fusedWords splits words users glue together. Applied to the whole lowered
// string before tokenization.
var fusedWords = [][2]string{
	{"скольковсего", "сколько всего"},
	{"какаяцена", "какая цена"},
	{"хочуузнать", "хочу узнать"},
	{"можнопосмотреть", "можно посмотреть"},
	{"добрыйдень", "добрый день"},
	{"добрыйвечер", "добрый вечер"},
	{"доброеутро", "доброе утро"},
	{"ненужно", "не нужно"},
	{"ненадо", "не надо"},
	{"нехочу", "не хочу"},
}

// layoutEnToRu converts QWERTY key positions to ЙЦУКЕН, recovering messages
// typed with the wrong layout.
var layoutEnToRu = map[rune]rune{
	'q': 'й', 'w': 'ц', 'e': 'у', 'r': 'к', 't': 'е', 'y': 'н', 'u': 'г',
	'i': 'ш', 'o': 'щ', 'p': 'з', '[': 'х', ']': 'ъ',
	'a': 'ф', 's': 'ы', 'd': 'в', 'f': 'а', 'g': 'п', 'h': 'р', 'j': 'о',
	'k': 'л', 'l': 'д', ';': 'ж', '\'': 'э',
	'z': 'я', 'x': 'ч', 'c': 'с', 'v': 'м', 'b': 'и', 'n': 'т', 'm': 'ь',
	',': 'б', '.': 'ю',
}

// latinKeepWords are latin tokens that are vocabulary, not layout accidents.
var latinKeepWords = map[string]bool{
	"crm": true, "api": true, "excel": true, "whatsapp": true, "telegram": true,
	"email": true, "kaspi": true, "amocrm": true, "iiko": true, "sms": true,
	"team": true, "of": true, "people": true, "wipon": true,
}

// knownRoots is the static root dictionary for the fast normalization path:
// the union of every root the pattern registry and the extractor vocabularies
// reference. Built once at package init.
var knownRoots = buildKnownRoots()

func buildKnownRoots() map[string]bool {
	roots := map[string]bool{}
	add := func(r string) {
		if r != "" {
			roots[r] = true
		}
	}
	for _, p := range intentPatterns {
		for _, r := range p.roots {
			add(r)
		}
		for _, ph := range p.phrases {
			for _, r := range ph {
				add(r)
			}
		}
	}
	for _, r := range positiveRoots {
		add(r)
	}
	// Extraction vocabularies share the same root table.
	for _, r := range []string{
		"человек", "менеджер", "сотрудник", "продавц", "команд", "отдел", "штат",
		"магазин", "ресторан", "кафе", "теря", "клиент", "контрол", "хаос",
		"автоматизир", "порядок", "срочно", "директор", "собственник", "владелец",
	} {
		add(r)
	}
	return roots
}
