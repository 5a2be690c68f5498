package marketplace

// Site is one country marketplace a store can be connected to.
type Site struct {
	ID       string `json:"id"`
	Country  string `json:"country"`
	Flag     string `json:"flag"`
	Currency string `json:"currency"`
	AuthHost string `json:"-"`
}

var sites = []Site{
	{ID: "MLA", Country: "Argentina", Flag: "🇦🇷", Currency: "ARS", AuthHost: "auth.mercadolibre.com.ar"},
	{ID: "MLB", Country: "Brasil", Flag: "🇧🇷", Currency: "BRL", AuthHost: "auth.mercadolivre.com.br"},
	{ID: "MCO", Country: "Colombia", Flag: "🇨🇴", Currency: "COP", AuthHost: "auth.mercadolibre.com.co"},
	{ID: "MLM", Country: "México", Flag: "🇲🇽", Currency: "MXN", AuthHost: "auth.mercadolibre.com.mx"},
	{ID: "MLC", Country: "Chile", Flag: "🇨🇱", Currency: "CLP", AuthHost: "auth.mercadolibre.cl"},
	{ID: "MLU", Country: "Uruguay", Flag: "🇺🇾", Currency: "UYU", AuthHost: "auth.mercadolibre.com.uy"},
	{ID: "MPE", Country: "Perú", Flag: "🇵🇪", Currency: "PEN", AuthHost: "auth.mercadolibre.com.pe"},
}

func Sites() []Site {
	out := make([]Site, len(sites))
	copy(out, sites)
	return out
}

func FindSite(id string) (Site, bool) {
	for _, s := range sites {
		if s.ID == id {
			return s, true
		}
	}
	return Site{}, false
}
