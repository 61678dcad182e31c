package strategy

import "github.com/ciuffardimattia-hub/my-trading-ai/internal/model"

// Labels maps every zone/trend pair to the tactical reading shown to users.
var Labels = map[model.Zone]map[model.Trend]string{
	model.ZoneOversold: {
		model.TrendAbove:   "Ipervenduto in trend rialzista: possibile accumulo",
		model.TrendBelow:   "Ipervenduto sotto SMA20: attendere conferma",
		model.TrendUnknown: "Ipervenduto",
	},
	model.ZoneNeutral: {
		model.TrendAbove:   "Neutrale, prezzo sopra SMA20",
		model.TrendBelow:   "Neutrale, prezzo sotto SMA20",
		model.TrendUnknown: "Neutrale",
	},
	model.ZoneOverbought: {
		model.TrendAbove:   "Ipercomprato sopra SMA20: valutare prese di profitto",
		model.TrendBelow:   "Ipercomprato sotto SMA20: momentum in esaurimento",
		model.TrendUnknown: "Ipercomprato",
	},
}

// Evaluate computes the signal for a snapshot from its RSI14 and SMA20.
func Evaluate(snap *model.Snapshot) model.Signal {
	zone := classifyZone(snap.RSI14)
	trend := classifyTrend(snap.Price, snap.SMA20)
	return model.Signal{
		Zone:  zone,
		Trend: trend,
		Label: Labels[zone][trend],
	}
}

// ZoneChanged reports whether a new reading crossed into a different band.
// Moving out of neutral into either extreme is what alerts care about.
func ZoneChanged(prev, next model.Zone) bool {
	return prev != next && next != model.ZoneNeutral
}
