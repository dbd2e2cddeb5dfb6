// Package catalog holds the static list of VC firms whose job boards are
// ingested, each tagged with its board platform and connection parameters.
package catalog

import "venturejobs/ingest-service/internal/model"

// Firms is the full source catalog. Order here is run order. Disabled
// entries are kept so re-enabling a firm is a one-word change.
var Firms = []model.Firm{
	{Name: "sequoia", Platform: model.PlatformConsider, Enabled: true, BoardID: "sequoia-capital", Endpoint: "https://jobs.sequoiacap.com/api-boards/search-jobs"},
	{Name: "a16z", Platform: model.PlatformConsider, Enabled: true, BoardID: "andreessen-horowitz", Endpoint: "https://jobs.a16z.com/api-boards/search-jobs"},
	{Name: "accel", Platform: model.PlatformGetro, Enabled: true, BoardID: "8672", Endpoint: "https://api.getro.com/api/v2/collections/8672/search/jobs"},
	{Name: "bessemer-venture-partners", Platform: model.PlatformConsider, Enabled: true, BoardID: "bessemer-ventures", Endpoint: "https://jobs.bvp.com/api-boards/search-jobs"},
	{Name: "kleiner-perkins", Platform: model.PlatformConsider, Enabled: true, BoardID: "kleiner-perkins", Endpoint: "https://jobs.kleinerperkins.com/api-boards/search-jobs"},
	{Name: "tiger-global-management", Platform: model.PlatformConsider, Enabled: false},
	{Name: "insight-partners", Platform: model.PlatformGetro, Enabled: true, BoardID: "246", Endpoint: "https://api.getro.com/api/v2/collections/246/search/jobs"},
	{Name: "lightspeed-venture-partners", Platform: model.PlatformConsider, Enabled: true, BoardID: "lightspeed", Endpoint: "https://jobs.lsvp.com/api-boards/search-jobs"},
	{Name: "greylock-partners", Platform: model.PlatformConsider, Enabled: true, BoardID: "greylock-partners", Endpoint: "https://jobs.greylock.com/api-boards/search-jobs"},
	{Name: "gv", Platform: model.PlatformConsider, Enabled: true, BoardID: "gv", Endpoint: "https://jobs.gv.com/api-boards/search-jobs"},
	{Name: "khosla-ventures", Platform: model.PlatformGetro, Enabled: true, BoardID: "257", Endpoint: "https://api.getro.com/api/v2/collections/257/search/jobs"},
	{Name: "index-ventures", Platform: model.PlatformConsider, Enabled: false},
	{Name: "founders-fund", Platform: model.PlatformConsider, Enabled: false},
	{Name: "general-catalyst", Platform: model.PlatformConsider, Enabled: false},
	{Name: "nea", Platform: model.PlatformConsider, Enabled: true, BoardID: "nea", Endpoint: "https://careers.nea.com/api-boards/search-jobs"},
	{Name: "union-square-ventures", Platform: model.PlatformConsider, Enabled: true, BoardID: "union-square-ventures", Endpoint: "https://jobs.usv.com/api-boards/search-jobs"},
	{Name: "true-ventures", Platform: model.PlatformGetro, Enabled: true, BoardID: "646", Endpoint: "https://api.getro.com/api/v2/collections/646/search/jobs"},
	{Name: "softbank-vision-fund", Platform: model.PlatformConsider, Enabled: false},
	{Name: "tcv", Platform: model.PlatformGetro, Enabled: true, BoardID: "6428", Endpoint: "https://api.getro.com/api/v2/collections/6428/search/jobs"},
	{Name: "canaan-partners", Platform: model.PlatformConsider, Enabled: false},
	{Name: "madrona-venture-group", Platform: model.PlatformConsider, Enabled: false},
	{Name: "real-ventures", Platform: model.PlatformGetro, Enabled: true, BoardID: "166", Endpoint: "https://api.getro.com/api/v2/collections/166/search/jobs"},
	{Name: "inovia", Platform: model.PlatformConsider, Enabled: true, BoardID: "inovia", Endpoint: "https://careers.inovia.vc/api-boards/search-jobs"},
}
