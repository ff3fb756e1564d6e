// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"bias-scan/internal/detector"
)

// Groups of people a blanket statement can target
const groupNouns = `(?:people|persons|students?|workers?|engineers?|managers?|developers?|programmers?|employees?|designers?|lawyers?|doctors?|nurses?|teachers?|artists?|athletes?|gamers?|teenagers?|kids|children|parents|immigrants?|foreigners?|locals|women|men|woman|man|girls|boys)`

const eliteSchools = `(?:iit|mit|harvard|oxford|cambridge|stanford|yale|princeton|an?\s+ivy\s+league(?:\s+school)?|elite\s+schools?|top\s+universit(?:y|ies))`

func canonical(category detector.Category, pattern string, confidence float64, severity detector.Severity) ruleSpec {
	return ruleSpec{category: category, pattern: pattern, confidence: confidence, severity: severity, tier: detector.TierCanonical}
}

func expanded(category detector.Category, pattern string) ruleSpec {
	return ruleSpec{category: category, pattern: pattern, confidence: 0.5, severity: detector.SeverityLow, tier: detector.TierExpanded}
}

// builtinRules returns the rule tables. The slice is append-only: new rules
// go at the end of their category block so earlier rules keep their order.
func builtinRules() []ruleSpec {
	const (
		low    = detector.SeverityLow
		medium = detector.SeverityMedium
		high   = detector.SeverityHigh
	)

	return []ruleSpec{
		// Gender
		canonical(detector.GenderStereotyping, `\b(?:all|every)\s+(?:women|men|girls|boys|females|males|woman|man|female|male)\s+(?:are|is|was|can't|cannot|won't|don't)\b`, 0.90, high),
		canonical(detector.GenderStereotyping, `\b(?:women|men|girls|boys|females|males)\s+(?:are\s+)?(?:always|never|too|very|naturally)\s+\w+`, 0.85, high),
		canonical(detector.GenderStereotyping, `\b(?:males?|females?|men|women|guys|girls)\s+(?:are|can't|won't|don't)\s+(?:weak|lazy|aggressive|emotional|irrational|bossy|hysterical|stupid)\b`, 0.85, high),
		canonical(detector.GenderStereotyping, `\b(?:she's|she\s+is)\s+a\s+woman,?\s+so\b`, 0.90, medium),
		canonical(detector.GenderStereotyping, `\b(?:he's|he\s+is)\s+a\s+man,?\s+so\b`, 0.90, medium),
		expanded(detector.GenderStereotyping, `\b(?:males?|females?|men|women|guys|girls)\s+are\b`),
		expanded(detector.GenderStereotyping, `\bshe's\s+a\s+woman\b`),
		expanded(detector.GenderStereotyping, `\b(?:like\s+a\s+girl|man\s+up|male[-\s]dominated)\b`),

		// Age
		canonical(detector.AgeBias, `\b(?:older|elderly|senior)\s+(?:people|employees?|workers?|staff)\s+(?:can't|cannot|won't|don't|are\s+too)\b`, 0.90, high),
		canonical(detector.AgeBias, `\b(?:younger|young|millennials?|gen\s*z)\s+(?:people|employees?|workers?\s+)?\s*(?:are\s+)?(?:entitled|lazy|inexperienced|naive)\b`, 0.90, high),
		canonical(detector.AgeBias, `\bage\s+group\s+\d+\s+can't\b`, 0.80, medium),
		canonical(detector.AgeBias, `\bboomers\s+are\b`, 0.85, medium),
		canonical(detector.AgeBias, `\bok\s+boomer\b`, 0.80, medium),
		canonical(detector.AgeBias, `\btoo\s+old\s+(?:to|for)\b`, 0.80, medium),
		expanded(detector.AgeBias, `\bage\s+group\b`),
		expanded(detector.AgeBias, `\b(?:older|younger)\s+people\b`),
		expanded(detector.AgeBias, `\b(?:millennials?|boomers?|gen\s*z)\b`),

		// Educational
		canonical(detector.EducationalBias, `\b(?:from|graduated\s+from)\s+`+eliteSchools+`\b[^.!?]{0,60}\b(?:better|superior|smarter|brighter)\b`, 0.95, high),
		canonical(detector.EducationalBias, `\b`+eliteSchools+`\s+(?:graduates?|students?|alumni)\s+(?:are\s+)?(?:always\s+|naturally\s+|inherently\s+)?(?:better|superior|smarter)\b`, 0.95, high),
		canonical(detector.EducationalBias, `\b(?:from|graduates?\s+from)\s+\w+\s+(?:are|is)\s+better\b`, 0.80, medium),
		canonical(detector.EducationalBias, `\b\w+\s+(?:graduates?|students?)\s+(?:are|is)\s+superior\b`, 0.80, medium),
		canonical(detector.EducationalBias, `\bpeople\s+from\s+top\s+universities\s+are\b`, 0.90, high),
		expanded(detector.EducationalBias, `\b(?:better|superior|smarter)\s+than\s+(?:the\s+)?(?:others|everyone(?:\s+else)?|the\s+rest)\b`),
		expanded(detector.EducationalBias, `\bthis\s+(?:guy|girl|person)\s+is\s+from\s+`+eliteSchools+`\b`),

		// Groupthink
		canonical(detector.Groupthink, `\beveryone\s+agrees\b`, 0.85, high),
		canonical(detector.Groupthink, `\bwe\s+all\s+think\b`, 0.80, medium),
		canonical(detector.Groupthink, `\bnobody\s+disagrees\b`, 0.90, high),
		canonical(detector.Groupthink, `\bconsensus\s+is\b`, 0.80, medium),
		canonical(detector.Groupthink, `\b(?:everyone|we\s+all|nobody|the\s+whole\s+team)\s+(?:agrees?|thinks?|supports?|disagrees?)\b`, 0.85, medium),
		canonical(detector.Groupthink, `\b(?:consensus|unanimous|unanimously)\s+(?:decision|agreement|support)\b`, 0.85, medium),
		canonical(detector.Groupthink, `\bno\s+need\s+(?:for|to)\s+(?:discuss|discussion|debate)\b`, 0.80, medium),
		expanded(detector.Groupthink, `\blet'?s\s+finalize\s+this\b`),
		expanded(detector.Groupthink, `\bwe'?re\s+all\s+on\s+the\s+same\s+page\b`),
		expanded(detector.Groupthink, `\bunanimous(?:ly)?\b`),

		// Anchoring
		canonical(detector.Anchoring, `\b(?:first|initial|original)\s+(?:impression|thought|idea|feeling)\s+(?:is|was|tells\s+me)\b`, 0.80, medium),
		canonical(detector.Anchoring, `\b(?:my|our)\s+first\s+impression\b`, 0.75, low),
		canonical(detector.Anchoring, `\bat\s+first\s+glance\b[^.!?]{0,40}\b(?:clearly|obviously|definitely)\b`, 0.70, low),
		expanded(detector.Anchoring, `\bfirst\s+impression\b`),
		expanded(detector.Anchoring, `\binitial\s+thought\b`),
		expanded(detector.Anchoring, `\bstarted\s+with\b`),
		expanded(detector.Anchoring, `\bbegan\s+with\b`),
		expanded(detector.Anchoring, `\bfirst\s+thing\b`),
		expanded(detector.Anchoring, `\bat\s+first\b`),
		expanded(detector.Anchoring, `\boriginally\b`),
		expanded(detector.Anchoring, `\binitially\b`),

		// Confirmation
		canonical(detector.Confirmation, `\b(?:proves|confirms|validates)\s+(?:my|our|the)\s+(?:point|theory|belief|assumption)\b`, 0.85, medium),
		canonical(detector.Confirmation, `\bconfirms\s+what\s+i(?:'ve)?\s+(?:thought|been\s+saying|said)\b`, 0.85, medium),
		canonical(detector.Confirmation, `\bi\s+knew\s+it\b`, 0.80, medium),
		canonical(detector.Confirmation, `\btold\s+you\s+so\b`, 0.80, medium),
		canonical(detector.Confirmation, `(?:^|[.!?;]\s+)as\s+expected\b`, 0.80, medium),
		expanded(detector.Confirmation, `\bproves\s+my\s+point\b`),
		expanded(detector.Confirmation, `\bas\s+expected\b`),
		expanded(detector.Confirmation, `\bobviously\b`),
		expanded(detector.Confirmation, `\bclearly\b`),
		expanded(detector.Confirmation, `\bof\s+course\b`),

		// Stereotyping
		canonical(detector.Stereotyping, `\b(?:all|every|each)\s+`+groupNouns+`\s+(?:are|is|was|can't|cannot|won't|don't)\b`, 0.80, medium),
		canonical(detector.Stereotyping, `\btypical\s+(?:of\s+)?(?:them|those\s+people|their\s+kind)\b`, 0.75, medium),
		canonical(detector.Stereotyping, `\bpeople\s+like\s+(?:that|them)\b`, 0.75, medium),
		canonical(detector.Stereotyping, `\bthose\s+people\s+(?:are|always|never)\b`, 0.80, medium),
		expanded(detector.Stereotyping, `\ball\s+(?:people|men|women|students|workers)\s+are\b`),
		expanded(detector.Stereotyping, `\bevery\s+(?:engineer|manager)\s+is\b`),
		expanded(detector.Stereotyping, `\b(?:all|every|each)\s+\w+\s+(?:are|is|can't|won't|don't)\b`),

		// Toxic language
		canonical(detector.ToxicLanguage, `\b(?:this|that|it)\s+(?:is|was)\s+(?:so\s+)?(?:stupid|terrible|awful|idiotic|pathetic)\b`, 0.90, high),
		canonical(detector.ToxicLanguage, `\b(?:absolutely|completely|totally|utterly)\s+(?:stupid|idiotic|terrible|awful|ridiculous|nonsense|useless|pathetic)\b`, 0.95, high),
		canonical(detector.ToxicLanguage, `\b(?:hate|despise|loathe|detest)\s+(?:this|that|it|these|those|you|them)\b`, 0.95, high),
		canonical(detector.ToxicLanguage, `\b(?:disgusting|sickening|nauseating|revolting)\b`, 0.90, high),
		canonical(detector.ToxicLanguage, `\b(?:you|they|he|she)(?:\s+(?:are|is)|'re|'s)\s+(?:an?\s+)?(?:idiot|moron|stupid|useless|worthless|incompetent)\b`, 0.95, high),
		canonical(detector.ToxicLanguage, `\bworst\s+\w+\s+ever\b`, 0.90, high),
		canonical(detector.ToxicLanguage, `\bmakes\s+me\s+sick\b`, 0.90, high),
		expanded(detector.ToxicLanguage, `\bstupid\b`),
		expanded(detector.ToxicLanguage, `\bidiot\w*`),
		expanded(detector.ToxicLanguage, `\bterrible\b`),
		expanded(detector.ToxicLanguage, `\bawful\b`),
		expanded(detector.ToxicLanguage, `\bhate\b`),
		expanded(detector.ToxicLanguage, `\buseless\b`),
		expanded(detector.ToxicLanguage, `\bworthless\b`),
		expanded(detector.ToxicLanguage, `\bridiculous\b`),
		expanded(detector.ToxicLanguage, `\bnonsense\b`),
		expanded(detector.ToxicLanguage, `\bcrazy\b`),
		expanded(detector.ToxicLanguage, `\binsane\b`),

		// Cultural
		canonical(detector.CulturalBias, `\b(?:race|ethnic|cultural)\s+(?:tendencies|group\s+tendencies)\b`, 0.80, medium),
		canonical(detector.CulturalBias, `\bpeople\s+from\s+(?:that|their|those)\s+(?:background|culture|country|part\s+of\s+the\s+world)\b`, 0.80, medium),
		canonical(detector.CulturalBias, `\btypical\s+of\s+(?:their|that|his|her)\s+culture\b`, 0.85, high),
		canonical(detector.CulturalBias, `\b(?:normal|civilized|proper)\s+(?:way\s+of\s+doing\s+things|cultures?)\b`, 0.70, medium),
		expanded(detector.CulturalBias, `\bthis\s+(?:guy|girl|person|man|woman)\s+is\s+from\b`),
		expanded(detector.CulturalBias, `\bcultural\s+background\b`),
		expanded(detector.CulturalBias, `\bethnicity\b`),
		expanded(detector.CulturalBias, `\bnationality\b`),
		expanded(detector.CulturalBias, `\breligion\b`),

		// Generalization
		canonical(detector.Generalization, `\b(?:everyone|nobody|everybody|anyone|no\s+one)\s+(?:always|never|can't|cannot|won't)\b`, 0.80, medium),
		canonical(detector.Generalization, `\b(?:they|those\s+people|these\s+people)\s+(?:always|never)\s+\w+`, 0.75, medium),
		expanded(detector.Generalization, `\b(?:always|never)\s+(?:do|does|get|gets|make|makes)\b`),

		// Dismissive
		canonical(detector.DismissiveLanguage, `\bwhatever,?\s+(?:this|that|it)\s+is\s+(?:useless|pointless|a\s+joke)\b`, 0.80, medium),
		canonical(detector.DismissiveLanguage, `\bi\s+don'?t\s+care,?\s+do\s+what(?:ever)?\s+you\s+want\b`, 0.75, medium),
		canonical(detector.DismissiveLanguage, `\b(?:this|that)\s+is\s+a\s+joke\b`, 0.80, medium),
		canonical(detector.DismissiveLanguage, `\bnot\s+worth\s+(?:discussing|my\s+time|the\s+effort)\b`, 0.75, medium),
		expanded(detector.DismissiveLanguage, `\bwho\s+cares\b`),
		expanded(detector.DismissiveLanguage, `\bwhatever\b`),
		expanded(detector.DismissiveLanguage, `\bdon'?t\s+care\b`),
		expanded(detector.DismissiveLanguage, `\bwaste\s+of\s+time\b`),

		// Hierarchical
		canonical(detector.HierarchicalBias, `\b(?:junior|entry[-\s]level)\s+(?:employees?|staff|workers?|people|developers?)\s+(?:can't|cannot|don't|won't)\b`, 0.80, medium),
		canonical(detector.HierarchicalBias, `\bonly\s+(?:senior|top)\s+(?:managers?|leaders?|management|executives?|people)\s+should\b`, 0.80, medium),
		canonical(detector.HierarchicalBias, `\binterns?\s+(?:can't|shouldn't|don't)\s+(?:contribute|decide|understand)\b`, 0.75, medium),
		expanded(detector.HierarchicalBias, `\b(?:just|only)\s+an?\s+(?:intern|junior)\b`),

		// Department
		canonical(detector.DepartmentStereotyping, `\b(?:marketing|sales|hr|finance|legal|it|engineering|design)\s+(?:people|folks|teams?|guys)\s+are\s+(?:all\s+)?(?:too\s+)?(?:creative|disorganized|aggressive|pushy|soft|emotional|lazy|boring|awkward|useless|clueless|nerds|greedy|sloppy)\b`, 0.80, medium),
		canonical(detector.DepartmentStereotyping, `\bengineers\s+are\s+(?:all\s+)?(?:socially\s+awkward|boring|nerds|antisocial)\b`, 0.80, medium),
		expanded(detector.DepartmentStereotyping, `\btypical\s+(?:engineer|marketing|sales|hr|manager)\b`),

		// Racial
		canonical(detector.RacialStereotyping, `\ball\s+(?:black|white|asian|hispanic|african|european|latino|arab)s?\s+(?:people\s+)?(?:are|can't)\b`, 0.95, high),
		canonical(detector.RacialStereotyping, `\b(?:black|white|asian|hispanic|latino|arab)(?:s|\s+people)\s+are\s+(?:all\s+|naturally\s+|always\s+)?\w+`, 0.85, high),
		canonical(detector.RacialStereotyping, `\b(?:race|racial|ethnic)\s+(?:tendencies|traits|inferiority|superiority)\b`, 0.80, high),
		expanded(detector.RacialStereotyping, `\b(?:black|white|asian|hispanic|latino|arab)\s+people\b`),

		// Religious
		canonical(detector.ReligiousBias, `\b(?:muslims|christians|jews|hindus|buddhists|atheists|catholics|sikhs)\s+are\s+all\b`, 0.90, high),
		canonical(detector.ReligiousBias, `\ball\s+(?:muslims|christians|jews|hindus|buddhists|atheists|catholics|sikhs)\s+are\b`, 0.90, high),
		canonical(detector.ReligiousBias, `\b(?:muslims|christians|jews|hindus|buddhists|atheists|catholics|sikhs)\s+are\s+(?:extremists|terrorists|greedy|judgmental|backward|violent|intolerant)\b`, 0.95, high),
		expanded(detector.ReligiousBias, `\b(?:muslims|christians|jews|hindus|buddhists|atheists)\b`),

		// Nationality
		canonical(detector.NationalityBias, `\b(?:americans|french|germans|italians|indians|chinese|russians|mexicans|british|japanese|nigerians|canadians|brazilians)\s+(?:people\s+)?are\s+all\b`, 0.80, medium),
		canonical(detector.NationalityBias, `\ball\s+(?:americans|french\s+people|germans|italians|indians|chinese\s+people|russians|mexicans|british\s+people)\s+are\b`, 0.80, medium),
		canonical(detector.NationalityBias, `\b(?:those|these)\s+foreigners\b`, 0.75, medium),
		expanded(detector.NationalityBias, `\bforeigners\b`),
		expanded(detector.NationalityBias, `\b(?:americans|germans|french\s+people|indians|chinese\s+people)\s+are\b`),

		// Socioeconomic
		canonical(detector.SocioeconomicBias, `\b(?:rich|poor|wealthy|middle[-\s]class|working[-\s]class|low[-\s]income)\s+people\s+are\s+(?:all\s+)?(?:lazy|greedy|selfish|unmotivated|stupid|boring|conventional|entitled|criminals)\b`, 0.85, high),
		canonical(detector.SocioeconomicBias, `\b(?:rich|poor|wealthy|middle[-\s]class|working[-\s]class|low[-\s]income)\s+people\s+are\s+all\b`, 0.80, medium),
		expanded(detector.SocioeconomicBias, `\b(?:rich|poor|low[-\s]income)\s+people\b`),

		// Availability
		canonical(detector.AvailabilityBias, `\bi\s+saw\s+(?:this|it)\s+(?:happen\s+)?once,?\s+so\b`, 0.75, medium),
		canonical(detector.AvailabilityBias, `\brecent\s+examples\s+prove\b`, 0.75, medium),
		canonical(detector.AvailabilityBias, `\bi\s+remember\s+(?:this|it)\s+clearly,?\s+so\s+it\s+must\b`, 0.75, medium),
		expanded(detector.AvailabilityBias, `\b(?:happened|saw\s+it)\s+(?:to\s+me\s+)?once\b[^.!?]{0,30}\b(?:always|common|every\s+time)\b`),
		expanded(detector.AvailabilityBias, `\bi\s+remember\s+(?:when|this)\b`),
	}
}

// builtinProfiles returns keywords, context indicators and severity weights
func builtinProfiles() []CategoryProfile {
	identityIndicators := []string{"person", "individual", "background", "culture"}
	groupIndicators := []string{"group", "category", "type", "kind"}

	return []CategoryProfile{
		{
			Category:          detector.Groupthink,
			Keywords:          []string{"everyone", "consensus", "unanimous", "whole team", "finalize"},
			ContextIndicators: []string{"team", "meeting", "decision", "project"},
			SeverityWeight:    0.6,
		},
		{
			Category:          detector.Anchoring,
			Keywords:          []string{"first impression", "initial thought", "started with", "began with"},
			ContextIndicators: []string{"first", "initial", "start", "begin"},
			SeverityWeight:    0.4,
		},
		{
			Category:          detector.GenderStereotyping,
			Keywords:          []string{"women", "woman", "female", "girls", "boys", "ladies"},
			ContextIndicators: identityIndicators,
			SeverityWeight:    0.8,
		},
		{
			Category:          detector.CulturalBias,
			Keywords:          []string{"cultural", "ethnicity", "nationality", "background"},
			ContextIndicators: identityIndicators,
			SeverityWeight:    0.8,
		},
		{
			Category: detector.ToxicLanguage,
			Keywords: []string{
				"stupid", "idiot", "terrible", "awful", "hate", "disgusting",
				"useless", "worthless", "ridiculous", "nonsense",
			},
			ContextIndicators: []string{"communication", "feedback", "review", "evaluation"},
			SeverityWeight:    0.9,
		},
		{
			Category:          detector.Confirmation,
			Keywords:          []string{"proves", "confirms", "as expected", "i knew", "told you so"},
			ContextIndicators: []string{"evidence", "data", "research", "study"},
			SeverityWeight:    0.7,
		},
		{
			Category:          detector.Stereotyping,
			Keywords:          []string{"typical", "people like that", "those people", "all of them"},
			ContextIndicators: groupIndicators,
			SeverityWeight:    0.85,
		},
		{
			Category:          detector.AgeBias,
			Keywords:          []string{"older", "younger", "millennial", "boomer", "gen z", "age group", "too old"},
			ContextIndicators: []string{"experience", "generation", "career", "technology"},
			SeverityWeight:    0.7,
		},
		{
			Category:          detector.EducationalBias,
			Keywords:          []string{"iit", "harvard", "stanford", "oxford", "yale", "ivy league", "prestigious", "elite school", "top universit"},
			ContextIndicators: []string{"degree", "university", "college", "graduate"},
			SeverityWeight:    0.6,
		},
		{
			Category:          detector.Generalization,
			Keywords:          []string{"always", "never", "nobody", "everybody", "no one"},
			ContextIndicators: groupIndicators,
			SeverityWeight:    0.5,
		},
		{
			Category:          detector.DismissiveLanguage,
			Keywords:          []string{"whatever", "don't care", "who cares", "pointless", "waste of time"},
			ContextIndicators: []string{"discussion", "idea", "proposal", "meeting"},
			SeverityWeight:    0.6,
		},
		{
			Category:          detector.HierarchicalBias,
			Keywords:          []string{"junior", "entry-level", "intern", "only senior"},
			ContextIndicators: []string{"team", "senior", "manager", "decision"},
			SeverityWeight:    0.5,
		},
		{
			Category:          detector.DepartmentStereotyping,
			Keywords:          []string{"marketing people", "sales people", "hr people", "engineers are"},
			ContextIndicators: groupIndicators,
			SeverityWeight:    0.5,
		},
		{
			Category:          detector.RacialStereotyping,
			Keywords:          []string{"racial", "ethnic", "black people", "white people", "asians", "hispanics"},
			ContextIndicators: identityIndicators,
			SeverityWeight:    0.85,
		},
		{
			Category:          detector.ReligiousBias,
			Keywords:          []string{"muslim", "christian", "jews", "jewish", "hindu", "religion", "religious"},
			ContextIndicators: identityIndicators,
			SeverityWeight:    0.85,
		},
		{
			Category:          detector.NationalityBias,
			Keywords:          []string{"foreigner", "immigrant", "americans", "nationality"},
			ContextIndicators: identityIndicators,
			SeverityWeight:    0.8,
		},
		{
			Category:          detector.SocioeconomicBias,
			Keywords:          []string{"rich people", "poor people", "low-income", "welfare", "middle class"},
			ContextIndicators: []string{"income", "class", "money", "background"},
			SeverityWeight:    0.7,
		},
		{
			Category:          detector.AvailabilityBias,
			Keywords:          []string{"saw this happen", "i remember", "recent examples", "once"},
			ContextIndicators: []string{"example", "once", "recent", "remember"},
			SeverityWeight:    0.4,
		},
	}
}
