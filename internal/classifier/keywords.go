package classifier

// DefaultKeywords is the built-in list of third-party contact platform names
// and their obfuscation variants. Matching is a case-insensitive substring
// check, so only lowercase forms are kept here. Deployments extend the list
// through the keywords file without a code change.
func DefaultKeywords() []string {
	return []string{
		// messengers and social networks
		"тг", "вк", "vk",
		"вайбер", "viber",
		"ватсап", "whatsapp", "ватс ап", "ватс-ап",
		"телеграм", "telegram", "тлг", "tlg",
		"инстаграм", "instagram", "инста", "insta",
		"tg", "лс", "директ", "ссылка",

		// slang and leetspeak
		"тeлeграм", "т3л3грам", "тележка", "телега", "тлгрм", "тг-канал", "тг канал",
		"инст", "инстик", "инсту", "инстаграмм", "инстаграмчик",
		"вацап", "вотсап", "вотс ап", "вац ап", "watsapp", "watsap", "watsup",
		"вайберчик", "вайберуха", "вайб", "вайбера",
		"вконтакте", "в контакте", "вкнтакте", "вкнт", "вк-страница", "вк страница",

		// spacing and punctuation evasion
		"т г", "в к", "v k", "t g",
		"т.г", "в.к", "v.k", "t.g",
		"т_г", "в_к", "v_k", "t_g",
		"т-г", "в-к", "v-k", "t-g",
		"тг.", "вк.", "vk.", "tg.",

		// other platforms
		"facebook", "фейсбук", "фб", "fb",
		"twitter", "твиттер", "твт", "twt",
		"tiktok", "тикток", "тик-ток", "tt",
		"linkedin", "линкедин", "линк",
		"discord", "дискорд", "дис", "dc",
		"signal", "сигнал", "sg",
		"snapchat", "снэпчат", "снап", "sc",
		"reddit", "реддит", "рдт", "rdt",
		"twitch", "твич", "твч", "tvch",
		"youtube", "ютуб", "ют", "yt",
		"pinterest", "пинтерест", "пин", "pt",
		"onlyfans", "онлифанс", "оф", "of",
		"tinder", "тиндер", "тинд", "tdr",
		"zoom", "зум", "зм", "zm",
		"slack", "слак", "слк", "slk",
		"skype", "скайп", "ск", "sk",

		// contact-attempt phrases and pictographs
		"дотуп", "дотупь", "дотyп", "дотyпь",
		"пиши в", "напиши в", "добавь в", "кинь ссылку",
		"✉️", "📱", "📲", "🔗", "📧", "💬", "📨", "📩", "👾", "🤖",
		"🖇️", "📎", "📌", "📍", "📞", "📟", "📠", "🔌", "📡",
		"пиши в лс", "напиши в лс", "добавь в лс",
		"кинь ссылку в лс", "контакты в лс", "контакт в лс",
	}
}
