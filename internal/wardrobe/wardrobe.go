// Package wardrobe recommends clothing for an activity from current conditions.
package wardrobe

import (
	"github.com/skywindow/skywindow/internal/safety"
	"github.com/skywindow/skywindow/internal/weather"
)

// Item is one piece of recommended gear.
type Item struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Slot  Slot   `json:"slot"`
}

// Slot groups items by where they are worn.
type Slot string

const (
	SlotTop       Slot = "top"
	SlotBottom    Slot = "bottom"
	SlotShell     Slot = "shell"
	SlotAccessory Slot = "accessory"
)

var (
	Tank         = Item{ID: "tank", Label: "Tank Top", Slot: SlotTop}
	Tee          = Item{ID: "tee", Label: "T-Shirt", Slot: SlotTop}
	LongSleeve   = Item{ID: "long_sleeve", Label: "Long Sleeve", Slot: SlotTop}
	ThermalBase  = Item{ID: "thermal_base", Label: "Thermal Base", Slot: SlotTop}
	Hoodie       = Item{ID: "hoodie", Label: "Hoodie/Fleece", Slot: SlotTop}
	WindShell    = Item{ID: "wind_shell", Label: "Wind Shell", Slot: SlotShell}
	RainJacket   = Item{ID: "rain_jacket", Label: "Rain Jacket", Slot: SlotShell}
	WinterCoat   = Item{ID: "winter_coat", Label: "Winter Coat", Slot: SlotShell}
	Shorts       = Item{ID: "shorts", Label: "Shorts", Slot: SlotBottom}
	Tights       = Item{ID: "tights", Label: "Tights/Leggings", Slot: SlotBottom}
	Pants        = Item{ID: "pants", Label: "Pants", Slot: SlotBottom}
	ThermalTight = Item{ID: "thermal_tights", Label: "Thermal Tights", Slot: SlotBottom}
	Sunglasses   = Item{ID: "sunglasses", Label: "Sunglasses", Slot: SlotAccessory}
	Cap          = Item{ID: "cap", Label: "Cap", Slot: SlotAccessory}
	Beanie       = Item{ID: "beanie", Label: "Beanie", Slot: SlotAccessory}
	LightGloves  = Item{ID: "gloves_light", Label: "Light Gloves", Slot: SlotAccessory}
	NeckWarmer   = Item{ID: "buff", Label: "Neck Warmer", Slot: SlotAccessory}
)

// Outfit is an ordered list of gear: tops, bottoms, shell, accessories.
type Outfit struct {
	EffectiveTemperatureF float64 `json:"effectiveTemperatureF"`
	Items                 []Item  `json:"items"`
}

// Has reports whether the outfit includes an item.
func (o Outfit) Has(item Item) bool {
	for _, it := range o.Items {
		if it.ID == item.ID {
			return true
		}
	}
	return false
}

// intensityOffset shifts the felt temperature for how much heat an activity
// generates (positive) or how much wind the rider takes (negative).
func intensityOffset(activity string) float64 {
	switch activity {
	case "run", "tennis", "pickleball":
		return 15
	case "cycle", "moto":
		return -10
	default:
		return 0
	}
}

// Recommend picks clothing for the activity from the apparent temperature,
// precipitation, wind and sun. Activity aliases resolve through table; a nil
// table means the built-in one.
func Recommend(table *safety.Table, activityID string, n *weather.NormalizedSample) Outfit {
	if n == nil {
		return Outfit{}
	}
	if table == nil {
		table = safety.DefaultTable()
	}
	activity, _ := table.Resolve(activityID)

	feels := n.ApparentTemperatureF
	effective := feels + intensityOffset(activity)
	raining := n.Condition.IsRainLabeled() || n.PrecipProbability > 0.3
	sunny := n.CloudCover < 0.3 && n.UVIndex > 3
	cycling := activity == "cycle"
	running := activity == "run"

	var items []Item

	switch {
	case effective >= 75:
		items = append(items, Tank)
	case effective >= 65:
		items = append(items, Tee)
	case effective >= 55:
		items = append(items, LongSleeve)
	case effective >= 45:
		items = append(items, ThermalBase)
		if cycling || n.WindMph > 10 {
			items = append(items, WindShell)
		}
	case effective >= 30:
		items = append(items, ThermalBase, Hoodie)
	default:
		items = append(items, ThermalBase, WinterCoat)
	}

	switch {
	case effective >= 60:
		items = append(items, Shorts)
	case effective >= 45:
		if running {
			items = append(items, Shorts)
		} else {
			items = append(items, Pants)
		}
	case effective >= 30:
		items = append(items, Tights)
	default:
		items = append(items, ThermalTight)
	}

	if raining {
		items = append(items, RainJacket)
	}

	if sunny {
		items = append(items, Sunglasses, Cap)
	}
	if feels < 45 {
		items = append(items, LightGloves)
	}
	if feels < 30 {
		items = append(items, Beanie, NeckWarmer)
	}

	return Outfit{EffectiveTemperatureF: effective, Items: items}
}
