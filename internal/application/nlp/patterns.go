package nlp

import "regexp"

// Intent is one label from the fixed 13-value classification taxonomy.
type Intent string

const (
	IntentTransactional   Intent = "transactional"
	IntentNavigational    Intent = "navigational"
	IntentInformational   Intent = "informational"
	IntentCommercial      Intent = "commercial"
	IntentExploratory     Intent = "exploratory"
	IntentComparison      Intent = "comparison"
	IntentTroubleshooting Intent = "troubleshooting"
	IntentOpinionSeeking  Intent = "opinion_seeking"
	IntentEmotional       Intent = "emotional"
	IntentProcedural      Intent = "procedural"
	IntentRegulatory      Intent = "regulatory"
	IntentBrandMonitoring Intent = "brand_monitoring"
	IntentMeta            Intent = "meta"
)

// IsValid checks if the intent is a known taxonomy value.
func (i Intent) IsValid() bool {
	switch i {
	case IntentTransactional, IntentNavigational, IntentInformational,
		IntentCommercial, IntentExploratory, IntentComparison,
		IntentTroubleshooting, IntentOpinionSeeking, IntentEmotional,
		IntentProcedural, IntentRegulatory, IntentBrandMonitoring, IntentMeta:
		return true
	default:
		return false
	}
}

// String returns the string representation of the intent.
func (i Intent) String() string {
	return string(i)
}

// PatternRule is one weighted signal for a category.  Source keeps the
// human-readable pattern text for the explanation trail.
type PatternRule struct {
	Pattern *regexp.Regexp
	Source  string
	Weight  float64
}

// CategoryPatterns is the ordered rule list for one intent category.
type CategoryPatterns struct {
	Category Intent
	Rules    []PatternRule
}

func rule(pattern string, weight float64) PatternRule {
	return PatternRule{
		Pattern: regexp.MustCompile("(?i)" + pattern),
		Source:  pattern,
		Weight:  weight,
	}
}

// priorityOrder is scanned first to last when picking the winner among
// categories clearing the score threshold.  Earlier entries win ties so
// actionable, distinctive categories beat the catch-all informational.
// The ordering is empirically chosen; keep it stable.
var priorityOrder = []Intent{
	IntentEmotional,
	IntentMeta,
	IntentTroubleshooting,
	IntentTransactional,
	IntentComparison,
	IntentCommercial,
	IntentNavigational,
	IntentProcedural,
	IntentRegulatory,
	IntentBrandMonitoring,
	IntentOpinionSeeking,
	IntentExploratory,
	IntentInformational,
}

// patternTable holds every category's weighted rules.  The taxonomy is data,
// not control flow: each category can be unit-tested in isolation and
// extended without touching the classifier.
var patternTable = []CategoryPatterns{
	{
		Category: IntentTransactional,
		Rules: []PatternRule{
			rule(`\bbuy\b`, 0.8),
			rule(`\bpurchase\b`, 0.8),
			rule(`\border\b`, 0.7),
			rule(`\bbook\b`, 0.7),
			rule(`\breserve\b`, 0.7),
			rule(`\bsubscribe\b`, 0.7),
			rule(`\bsign\s*up\b`, 0.6),
			rule(`\bregister\b`, 0.5),
			rule(`\bdownload\b`, 0.5),
			rule(`\bget\s+started\b`, 0.6),
			rule(`\bprice\b`, 0.5),
			rule(`\bcost\b`, 0.5),
			rule(`\bhow\s+much\b`, 0.5),
			rule(`\bcheap(est)?\b`, 0.6),
			rule(`\bdiscount\b`, 0.7),
			rule(`\bdeal(s)?\b`, 0.6),
			rule(`\bpromo\s*code\b`, 0.8),
			rule(`\bcoupon\b`, 0.8),
			rule(`\bsale\b`, 0.7),
			rule(`\boffer(s)?\b`, 0.5),
			rule(`\bblack\s*friday\b`, 0.85),
			rule(`\bcyber\s*monday\b`, 0.85),
			rule(`\bprime\s*day\b`, 0.8),
			rule(`\bholiday\s+sale\b`, 0.8),
			rule(`\bflash\s+sale\b`, 0.8),
			rule(`\bclearance\b`, 0.7),
			rule(`\blimited\s+(time\s+)?offer\b`, 0.7),
			rule(`\bget\s+(a|the)?\s*quote\b`, 0.7),
			rule(`\bcalculat(e|or)\b`, 0.5),
			rule(`\badd\s+to\s+cart\b`, 0.9),
			rule(`\bcheckout\b`, 0.9),
		},
	},
	{
		Category: IntentNavigational,
		Rules: []PatternRule{
			rule(`\bmanage\s+(my\s+)?booking\b`, 0.9),
			rule(`\bmy\s+account\b`, 0.9),
			rule(`\blogin\b`, 0.9),
			rule(`\blog\s*in\b`, 0.9),
			rule(`\bsign\s*in\b`, 0.8),
			rule(`\bwebsite\b`, 0.6),
			rule(`\bofficial\s+site\b`, 0.8),
			rule(`\bapp\b`, 0.4),
			rule(`\bcontact\b`, 0.7),
			rule(`\bcustomer\s+service\b`, 0.8),
			rule(`\bphone\s+number\b`, 0.8),
			rule(`\bnear\s+me\b`, 0.6),
			rule(`\blocation\b`, 0.5),
			rule(`\bfind\s+(a|the)?\s*store\b`, 0.7),
		},
	},
	{
		Category: IntentInformational,
		Rules: []PatternRule{
			rule(`\bwhat\s+is\b`, 0.7),
			rule(`\bwhat\s+are\b`, 0.7),
			rule(`\bwhat\s+does\b`, 0.7),
			rule(`\bexplain\b`, 0.8),
			rule(`\bmeaning\b`, 0.8),
			rule(`\bdefinition\b`, 0.9),
			rule(`\blearn\s+about\b`, 0.7),
			rule(`\bunderstand\b`, 0.6),
			rule(`\bguide\b`, 0.5),
			rule(`\bfact[s]?\b`, 0.5),
			rule(`\bhistory\s+of\b`, 0.6),
			rule(`\boverview\b`, 0.5),
		},
	},
	{
		Category: IntentCommercial,
		Rules: []PatternRule{
			rule(`\bbest\b`, 0.7),
			rule(`\btop\s+\d+\b`, 0.7),
			rule(`\breview[s]?\b`, 0.7),
			rule(`\brating[s]?\b`, 0.5),
			rule(`\bcompar(e|ison)\b`, 0.6),
			rule(`\balternative[s]?\b`, 0.6),
			rule(`\brecommend(ed|ation)?\b`, 0.6),
			rule(`\bpros\s+and\s+cons\b`, 0.7),
			rule(`\bworth\s+it\b`, 0.7),
			rule(`\bshould\s+i\s+(buy|get|use|book)\b`, 0.8),
		},
	},
	{
		Category: IntentComparison,
		Rules: []PatternRule{
			rule(`\bvs\.?\b`, 0.8),
			rule(`\bversus\b`, 0.8),
			rule(`\bor\b.*\bwhich\b`, 0.7),
			rule(`\bwhich\s+is\s+better\b`, 0.9),
			rule(`\bwhich\s+one\b`, 0.6),
			rule(`\bcompare\s+.*\s+(to|with|and)\b`, 0.8),
			rule(`\bdifference\s+between\b`, 0.7),
			rule(`\b(.*)\s+or\s+(.*)\?`, 0.6),
		},
	},
	{
		Category: IntentExploratory,
		Rules: []PatternRule{
			rule(`\btell\s+me\s+about\b`, 0.8),
			rule(`\bwhat\s+(can|do)\s+you\s+(tell|know)\b`, 0.7),
			rule(`\binterested\s+in\b`, 0.5),
			rule(`\bcurious\s+about\b`, 0.6),
			rule(`\bexplore\b`, 0.6),
			rule(`\bdiscover\b`, 0.5),
			rule(`\blearn\s+more\b`, 0.6),
			rule(`\bfind\s+out\b`, 0.5),
			rule(`\bshow\s+me\b`, 0.5),
			rule(`\bwhat\s+are\s+some\b`, 0.6),
		},
	},
	{
		Category: IntentTroubleshooting,
		Rules: []PatternRule{
			rule(`\bnot\s+working\b`, 0.9),
			rule(`\bdoesn'?t\s+work\b`, 0.9),
			rule(`\bwon'?t\s+(load|open|start|work)\b`, 0.8),
			rule(`\berror\b`, 0.8),
			rule(`\bproblem\s+with\b`, 0.7),
			rule(`\bissue\s+with\b`, 0.7),
			rule(`\bfix\b`, 0.6),
			rule(`\bsolve\b`, 0.6),
			rule(`\btroubleshoot\b`, 0.9),
			rule(`\bcan'?t\s+(find|access|see|get|login|book)\b`, 0.7),
			rule(`\bfailed\b`, 0.6),
			rule(`\bwhy\s+(is|isn'?t|does|doesn'?t|can'?t|won'?t)\b`, 0.6),
			rule(`\bhelp\s+(me\s+)?with\b`, 0.5),
		},
	},
	{
		Category: IntentOpinionSeeking,
		Rules: []PatternRule{
			rule(`\bany\s+good\b`, 0.9),
			rule(`\bworth\s+(it|the)\b`, 0.8),
			rule(`\bgood\s+choice\b`, 0.7),
			rule(`\bwhat\s+do\s+you\s+think\b`, 0.9),
			rule(`\bopinion\s+on\b`, 0.9),
			rule(`\byour\s+thoughts\b`, 0.8),
			rule(`\bhow\s+(good|bad)\s+is\b`, 0.7),
			rule(`\breliable\b`, 0.5),
			rule(`\btrustworthy\b`, 0.6),
			rule(`\breputable\b`, 0.6),
			rule(`\bdo\s+you\s+recommend\b`, 0.8),
			rule(`\bis\s+it\s+(safe|good|worth|legit)\b`, 0.7),
		},
	},
	{
		Category: IntentEmotional,
		Rules: []PatternRule{
			rule(`\bawful\b`, 0.8),
			rule(`\bterrible\b`, 0.8),
			rule(`\bhorrible\b`, 0.8),
			rule(`\bamazing\b`, 0.7),
			rule(`\bfantastic\b`, 0.7),
			rule(`\bi\s+(love|hate|loved|hated)\b`, 0.9),
			rule(`\bworst\b`, 0.8),
			rule(`\bbest\s+experience\b`, 0.7),
			rule(`\bdisappoint(ed|ing)\b`, 0.8),
			rule(`\bfrustrat(ed|ing)\b`, 0.8),
			rule(`\bangry\b`, 0.8),
			rule(`\bhappy\s+with\b`, 0.6),
			rule(`\bnightmare\b`, 0.9),
			rule(`\bwonderful\b`, 0.7),
			rule(`\bexcited\b`, 0.6),
		},
	},
	{
		Category: IntentProcedural,
		Rules: []PatternRule{
			rule(`\bhow\s+to\b`, 0.8),
			rule(`\bhow\s+do\s+(i|you)\b`, 0.8),
			rule(`\bhow\s+can\s+i\b`, 0.7),
			rule(`\bstep[s]?\s+to\b`, 0.9),
			rule(`\bstep\s+by\s+step\b`, 0.9),
			rule(`\bprocess\s+(for|to|of)\b`, 0.6),
			rule(`\bprocedure\b`, 0.7),
			rule(`\btutorial\b`, 0.6),
			rule(`\binstructions\b`, 0.7),
			rule(`\bway\s+to\b`, 0.5),
			rule(`\b(upgrade|change|cancel|modify|update)\s+(my|a|the)\b`, 0.7),
		},
	},
	{
		Category: IntentRegulatory,
		Rules: []PatternRule{
			rule(`\bpolicy\b`, 0.7),
			rule(`\bpolicies\b`, 0.7),
			rule(`\brule[s]?\b`, 0.7),
			rule(`\bregulation[s]?\b`, 0.8),
			rule(`\blaw[s]?\b`, 0.7),
			rule(`\blegal\b`, 0.6),
			rule(`\brequirement[s]?\b`, 0.6),
			rule(`\brestriction[s]?\b`, 0.6),
			rule(`\bterms\s+(and|&)\s+conditions\b`, 0.9),
			rule(`\bterms\s+of\s+(service|use)\b`, 0.8),
			rule(`\bprivacy\s+policy\b`, 0.8),
			rule(`\brefund\s+policy\b`, 0.8),
			rule(`\ballowed\b`, 0.5),
			rule(`\bpermitted\b`, 0.6),
			rule(`\bprohibited\b`, 0.7),
			rule(`\beu\s*261\b`, 0.9),
			rule(`\bgdpr\b`, 0.9),
			rule(`\bcomplian(ce|t)\b`, 0.7),
		},
	},
	{
		Category: IntentBrandMonitoring,
		Rules: []PatternRule{
			rule(`\bwhat\s+(did|does|do)\s+.*\s+say\b`, 0.8),
			rule(`\bnews\s+about\b`, 0.8),
			rule(`\blatest\s+news\b`, 0.8),
			rule(`\barticle[s]?\s+about\b`, 0.7),
			rule(`\bmedia\s+coverage\b`, 0.9),
			rule(`\bpress\s+release\b`, 0.8),
			rule(`\bmentioned\s+in\b`, 0.7),
			rule(`\breported\b`, 0.6),
			rule(`\bcoverage\s+of\b`, 0.7),
			rule(`\bheadlines\b`, 0.7),
			rule(`\bwhat\s+.*\s+wrote\b`, 0.7),
		},
	},
	{
		Category: IntentMeta,
		Rules: []PatternRule{
			rule(`\bwrite\b`, 0.8),
			rule(`\bgenerate\b`, 0.9),
			rule(`\bcreate\b`, 0.6),
			rule(`\bcompose\b`, 0.8),
			rule(`\bdraft\b`, 0.7),
			rule(`\bsummarize\b`, 0.8),
			rule(`\bsummary\b`, 0.7),
			rule(`\btranslate\b`, 0.8),
			rule(`\brewrite\b`, 0.9),
			rule(`\bparaphrase\b`, 0.9),
			rule(`\blist\s+of\b`, 0.5),
			rule(`\bgive\s+me\s+(a|an)\b`, 0.5),
			rule(`\bformat\b`, 0.6),
			rule(`\bexamples?\s+of\b`, 0.5),
		},
	},
}

// rulesFor returns the pattern rules of one category, nil when the category
// has no table entry.
func rulesFor(category Intent) []PatternRule {
	for _, cp := range patternTable {
		if cp.Category == category {
			return cp.Rules
		}
	}
	return nil
}
