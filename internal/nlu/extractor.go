package nlu

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/RivenKid69/crm-sales-bot/internal/model"
)

// painPattern maps a lexical pattern to the canonical pain label.
type painPattern struct {
	re    *regexp.Regexp
	label string
}

// Ordered: the first match wins and the rest are discarded.
var painPatterns = []painPattern{
	{regexp.MustCompile(`теря[ею]м?\s*клиент`), "потеря клиентов"},
	{regexp.MustCompile(`клиент\S*\s*ухо`), "клиенты уходят"},
	{regexp.MustCompile(`уход\S*\s*клиент`), "клиенты уходят"},
	{regexp.MustCompile(`упуска[ею]м?`), "упускают сделки"},
	{regexp.MustCompile(`забыва[ею]т?`), "забывают задачи"},
	{regexp.MustCompile(`не\s*перезванива`), "не перезванивают"},
	{regexp.MustCompile(`пропуска[ею]т?`), "пропускают задачи"},
	{regexp.MustCompile(`нет\s*контрол`), "нет контроля"},
	{regexp.MustCompile(`не\s*(?:могу|можем)\s*контролир`), "нет контроля"},
	{regexp.MustCompile(`контроль\s*(?:за|над)`), "контроль продаж"},
	{regexp.MustCompile(`excel|эксел|табличк|таблиц`), "работа в Excel"},
	{regexp.MustCompile(`блокнот|записк|тетрад`), "записи в блокнотах"},
	{regexp.MustCompile(`вс[её]\s*в\s*голов`), "всё в головах"},
	{regexp.MustCompile(`нигде\s*не\s*(?:фикс|запис)`), "ничего не фиксируется"},
	{regexp.MustCompile(`разброс|раскидан`), "данные разбросаны"},
	{regexp.MustCompile(`хаос`), "хаос в данных"},
	{regexp.MustCompile(`беспоряд`), "беспорядок"},
	{regexp.MustCompile(`путаниц`), "путаница в данных"},
	{regexp.MustCompile(`дубл[иеяь]`), "дубли клиентов"},
	{regexp.MustCompile(`ошибк|ошиба`), "ошибки в работе"},
	{regexp.MustCompile(`долго\s*(?:иск|наход)`), "долго ищут информацию"},
	{regexp.MustCompile(`не\s*успева[ею]`), "не успевают"},
	{regexp.MustCompile(`много\s*времен`), "много времени на рутину"},
	{regexp.MustCompile(`неэффективн`), "неэффективность"},
	{regexp.MustCompile(`медленн`), "медленная работа"},
	{regexp.MustCompile(`продаж[иа]?\s*(?:пада|упа|снижа)`), "падение продаж"},
	{regexp.MustCompile(`мало\s*(?:продаж|клиент|сделок)`), "мало продаж"},
	{regexp.MustCompile(`остатк`), "путаница в остатках"},
}

// regexp's \b is ASCII-only and never matches next to Cyrillic letters, so
// word boundaries around Russian tokens are spelled out as character classes.
var companySizeRes = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*(?:человек|чел(?:$|[^а-яёa-z0-9])|менеджер|сотрудник|продавц|продаж|официант|people)`),
	regexp.MustCompile(`нас\s*(\d+)`),
	regexp.MustCompile(`команд\S*\s*(?:из|в|на)?\s*(\d+)`),
	regexp.MustCompile(`(?:team)\s*(?:of)?\s*(\d+)`),
	regexp.MustCompile(`отдел\S*\s*(\d+)`),
	regexp.MustCompile(`штат\S*\s*(\d+)`),
	regexp.MustCompile(`работа[ею]т\s*(\d+)`),
	regexp.MustCompile(`(\d+)\s*(?:в\s*команде|в\s*отделе)`),
	regexp.MustCompile(`на\s*(\d+)\s*(?:человек|сотрудник|пользовател)`),
}

// numberWords lets "восемь менеджеров" parse without digits.
var numberWords = map[string]int{
	"один": 1, "два": 2, "две": 2, "три": 3, "четыре": 4, "пять": 5,
	"шесть": 6, "семь": 7, "восемь": 8, "девять": 9, "десять": 10,
	"пятнадцать": 15, "двадцать": 20, "тридцать": 30, "пятьдесят": 50, "сто": 100,
}

var numberWordRe = regexp.MustCompile(`(один|две|два|три|четыре|пятнадцать|пятьдесят|пять|шесть|семь|восемь|девять|десять|двадцать|тридцать|сто)\s+(?:человек|менеджер|сотрудник|продавц|официант)`)

type vocabPattern struct {
	re    *regexp.Regexp
	value string
}

var toolPatterns = []vocabPattern{
	{regexp.MustCompile(`excel|эксел|таблиц|табличк`), "Excel"},
	{regexp.MustCompile(`(?:^|[^0-9a-zа-яё])1[сc](?:$|[^0-9a-zа-яё])`), "1С"},
	{regexp.MustCompile(`битрикс`), "Битрикс24"},
	{regexp.MustCompile(`amocrm|амосрм`), "amoCRM"},
	{regexp.MustCompile(`блокнот|тетрад|на\s*бумаг`), "блокноты"},
	{regexp.MustCompile(`вручную|руками|в\s*голове`), "вручную"},
}

var businessPatterns = []vocabPattern{
	{regexp.MustCompile(`магазин|розниц|торгов(?:ля|ый|ая)`), "розничная торговля"},
	{regexp.MustCompile(`ресторан|кафе|общепит|(?:^|[^а-яё])бар(?:$|[^а-яё])|столов`), "общепит"},
	{regexp.MustCompile(`(?:^|[^а-яё])опт(?:$|[^а-яё])|оптов`), "оптовая торговля"},
	{regexp.MustCompile(`производств`), "производство"},
	{regexp.MustCompile(`услуг|сервис|салон`), "услуги"},
}

var (
	emailRe  = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.\w{2,}`)
	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`\+7[\s-]?\(?\d{3}\)?[\s-]?\d{3}[\s-]?\d{2}[\s-]?\d{2}`),
		regexp.MustCompile(`\b8[\s-]?\(?\d{3}\)?[\s-]?\d{3}[\s-]?\d{2}[\s-]?\d{2}`),
		regexp.MustCompile(`\b\d{3}[\s-]\d{3}[\s-]\d{2}[\s-]\d{2}`),
	}
	clientNameRe = regexp.MustCompile(`(?i:меня\s+зовут|это)\s+([А-ЯЁ][а-яё]+)`)

	painImpactLossRe = regexp.MustCompile(`(?:теря[ею]м?|уходит)\s*(?:примерно|около|где-то)?\s*(\d+)\s*(клиент\S*|сделок|сделки|заказ\S*)`)
	painImpactTimeRe = regexp.MustCompile(`(?:трат[ие]м|уходит|занимает)\s*(?:примерно|около)?\s*(\d+)\s*(час\S*|минут\S*|дн\S*)`)

	budgetNumRe = regexp.MustCompile(`бюджет\D{0,20}?(\d+)\s*(?:тыс|т\.|к(?:$|[^а-яёa-z0-9])|000)?`)
)

var desiredOutcomePatterns = []vocabPattern{
	{regexp.MustCompile(`автоматизир|автоматизаци`), "автоматизация"},
	{regexp.MustCompile(`навести\s*порядок|нужен\s*порядок`), "порядок в данных"},
	{regexp.MustCompile(`(?:увеличить|поднять|нарастить)\s*продаж|рост\s*продаж`), "рост продаж"},
	{regexp.MustCompile(`контролировать|контроль\s*над`), "контроль продаж"},
	{regexp.MustCompile(`не\s*терять\s*клиент|удержива`), "удержание клиентов"},
}

var (
	valueAckRe = regexp.MustCompile(`помогло\s*бы|это\s*помож|было\s*бы\s*полезн|полезно|имеет\s*смысл|хотим\s*автоматизир|да,\s*это`)
	highIntRe  = regexp.MustCompile(`очень\s*(?:нужно|интересно|надо)|срочно|как\s*можно\s*скорее|где\s*подписать|давайте\s*скорее|берем|берём`)
)

var urgencyPatterns = []vocabPattern{
	{regexp.MustCompile(`горит|нужно\s*вчера|очень\s*срочно`), "very_urgent"},
	{regexp.MustCompile(`срочно|побыстрее`), "urgent"},
	{regexp.MustCompile(`не\s*срочно|просто\s*(?:изуча|смотрим)|пока\s*смотрим`), "not_urgent"},
}

var rolePatterns = []vocabPattern{
	{regexp.MustCompile(`руководител`), "head"},
	{regexp.MustCompile(`директор`), "director"},
	{regexp.MustCompile(`собственник|владелец|владелица`), "owner"},
	{regexp.MustCompile(`менеджер\s*по\s*продаж`), "sales_manager"},
}

var channelPatterns = []vocabPattern{
	{regexp.MustCompile(`вотсап|whatsapp|ватсап`), "whatsapp"},
	{regexp.MustCompile(`телеграм|telegram`), "telegram"},
	{regexp.MustCompile(`почт|email|мейл|е-мейл`), "email"},
	{regexp.MustCompile(`позвон|телефон|звонок`), "phone"},
}

var timelinePatterns = []vocabPattern{
	{regexp.MustCompile(`прямо\s*сейчас|сразу|немедленно`), "immediate"},
	{regexp.MustCompile(`на\s*этой\s*неделе`), "this_week"},
	{regexp.MustCompile(`в\s*этом\s*месяце`), "this_month"},
	{regexp.MustCompile(`в\s*следующем\s*квартале`), "next_quarter"},
}

// Extract pattern-matches the raw utterance against the slot registry and
// returns every extracted fact. Conflicting candidates for a single-valued
// slot resolve to the first match. Runs independently of intent
// classification and works on the surface text, not normalized tokens.
func Extract(raw string) map[string]any {
	lower := strings.ToLower(raw)
	out := map[string]any{}

	if size, ok := extractCompanySize(lower); ok {
		out[model.SlotCompanySize] = size
	}
	for _, p := range painPatterns {
		if p.re.MatchString(lower) {
			out[model.SlotPainPoint] = p.label
			break
		}
	}
	if v, ok := matchVocab(toolPatterns, lower); ok {
		out[model.SlotCurrentTools] = v
	}
	if v, ok := matchVocab(businessPatterns, lower); ok {
		out[model.SlotBusinessType] = v
	}
	if impact, ok := extractPainImpact(lower); ok {
		out[model.SlotPainImpact] = impact
	}
	if v, ok := matchVocab(desiredOutcomePatterns, lower); ok {
		out[model.SlotDesiredOutcome] = v
	}
	if valueAckRe.MatchString(lower) {
		out[model.SlotValueAcknowledged] = true
	}
	if highIntRe.MatchString(lower) {
		out[model.SlotHighInterest] = true
	}
	if contact, ok := extractContact(raw); ok {
		out[model.SlotContactInfo] = contact
	}
	if m := clientNameRe.FindStringSubmatch(raw); m != nil {
		out[model.SlotClientName] = m[1]
	}
	if v, ok := matchVocab(urgencyPatterns, lower); ok {
		out[model.SlotUrgency] = v
	}
	if budget, ok := extractBudget(lower); ok {
		out[model.SlotBudgetRange] = budget
	}
	if v, ok := matchVocab(rolePatterns, lower); ok {
		out[model.SlotRole] = v
	}
	if v, ok := matchVocab(channelPatterns, lower); ok {
		out[model.SlotPreferredChannel] = v
	}
	if v, ok := matchVocab(timelinePatterns, lower); ok {
		out[model.SlotTimeline] = v
	}

	return out
}

func matchVocab(patterns []vocabPattern, lower string) (string, bool) {
	for _, p := range patterns {
		if p.re.MatchString(lower) {
			return p.value, true
		}
	}
	return "", false
}

func extractCompanySize(lower string) (int, bool) {
	for _, re := range companySizeRes {
		if m := re.FindStringSubmatch(lower); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 10000 {
				return n, true
			}
		}
	}
	if m := numberWordRe.FindStringSubmatch(lower); m != nil {
		if n, ok := numberWords[m[1]]; ok {
			return n, true
		}
	}
	return 0, false
}

func extractPainImpact(lower string) (string, bool) {
	if m := painImpactLossRe.FindStringSubmatch(lower); m != nil {
		return fmt.Sprintf("теряем %s %s", m[1], m[2]), true
	}
	if m := painImpactTimeRe.FindStringSubmatch(lower); m != nil {
		return fmt.Sprintf("тратим %s %s", m[1], m[2]), true
	}
	return "", false
}

func extractContact(raw string) (string, bool) {
	if m := emailRe.FindString(raw); m != "" {
		return m, true
	}
	for _, re := range phoneRes {
		if m := re.FindString(raw); m != "" {
			return strings.TrimSpace(m), true
		}
	}
	return "", false
}

func extractBudget(lower string) (string, bool) {
	if m := budgetNumRe.FindStringSubmatch(lower); m != nil {
		return m[1] + " тыс", true
	}
	if strings.Contains(lower, "бюджет") &&
		(strings.Contains(lower, "небольш") || strings.Contains(lower, "ограничен") || strings.Contains(lower, "маленьк")) {
		return "небольшой", true
	}
	return "", false
}
