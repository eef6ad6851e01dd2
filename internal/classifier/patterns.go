package classifier

import "strings"

// pattern maps a keyword set to a fixed classification. Patterns are
// evaluated in order; the first match wins.
type pattern struct {
	keywords   []string
	reason     string
	action     string
	importance int
	category   string
}

// fallbackPatterns cover the milestone vocabulary in both Chinese and
// English, matching the user base.
var fallbackPatterns = []pattern{
	{
		keywords:   []string{"升遷", "promotion", "晉升", "新職位", "新頭銜", "promoted"},
		reason:     "Career promotion",
		action:     "Comment congratulations",
		importance: 90,
		category:   "career",
	},
	{
		keywords:   []string{"新工作", "new job", "加入", "joined", "excited to announce"},
		reason:     "New job",
		action:     "Comment to welcome the move",
		importance: 85,
		category:   "career",
	},
	{
		keywords:   []string{"結婚", "married", "訂婚", "engaged", "fiancé", "fiancée"},
		reason:     "Wedding or engagement",
		action:     "Comment best wishes",
		importance: 95,
		category:   "personal",
	},
	{
		keywords:   []string{"生子", "baby", "小孩", "child", "born", "新增成員"},
		reason:     "New baby",
		action:     "Comment best wishes",
		importance: 95,
		category:   "personal",
	},
	{
		keywords:   []string{"創業", "startup", "創公司", "founded", "創辦", "CEO", "創始人"},
		reason:     "Founding milestone",
		action:     "Comment encouragement",
		importance: 90,
		category:   "career",
	},
	{
		keywords:   []string{"退休", "retirement", "退休生活", "retiring"},
		reason:     "Retirement",
		action:     "Comment best wishes",
		importance: 85,
		category:   "career",
	},
	{
		keywords:   []string{"畢業", "graduation", "學位", "degree", "MBA"},
		reason:     "Academic milestone",
		action:     "Comment congratulations",
		importance: 80,
		category:   "achievement",
	},
	{
		keywords:   []string{"獲獎", "award", "認證", "certified", "通過"},
		reason:     "Professional recognition",
		action:     "Comment congratulations",
		importance: 75,
		category:   "achievement",
	},
}

// fallbackDetection runs the ordered keyword rules; the first matching
// pattern wins. No match means the activity is not important.
func fallbackDetection(content string) (*Classification, bool) {
	lower := strings.ToLower(content)

	for _, p := range fallbackPatterns {
		for _, keyword := range p.keywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				return &Classification{
					Importance:      p.importance,
					Reason:          p.reason,
					Category:        p.category,
					SuggestedAction: p.action,
				}, true
			}
		}
	}

	return nil, false
}
