package memory

import (
	"txdash/internal/core"
	"txdash/internal/store/storetest"
)

func searchMarch2024() core.SearchQuery {
	return core.SearchQuery{Page: 1, PageSize: 10, Month: storetest.March2024}
}
