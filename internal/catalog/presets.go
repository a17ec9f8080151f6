package catalog

// Preset assets are remote references, never embedded, and get resolved
// through the remote-fetch path on first selection.

var presetPeople = []Asset{
	{ID: "preset_p_1", Data: "https://images.unsplash.com/photo-1539109136881-3be0616acf4b?w=800&q=80"},
	{ID: "preset_p_2", Data: "https://images.unsplash.com/photo-1524504388940-b1c1722653e1?w=800&q=80"},
	{ID: "preset_p_3", Data: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800&q=80"},
	{ID: "preset_p_4", Data: "https://images.unsplash.com/photo-1488426862026-3ee34a7d66df?w=800&q=80"},
}

var presetClothes = []Asset{
	{ID: "preset_c_1", Data: "https://images.unsplash.com/photo-1591047139829-d91aecb6caea?w=800&q=80"},
	{ID: "preset_c_2", Data: "https://images.unsplash.com/photo-1576566588028-4147f3842f27?w=800&q=80"},
	{ID: "preset_c_3", Data: "https://images.unsplash.com/photo-1434389677669-e08b4cac3105?w=800&q=80"},
	{ID: "preset_c_4", Data: "https://images.unsplash.com/photo-1515886657613-9f3515b0c78f?w=800&q=80"},
}

func PresetPeople() Catalog {
	return New(presetPeople...)
}

func PresetClothes() Catalog {
	return New(presetClothes...)
}
