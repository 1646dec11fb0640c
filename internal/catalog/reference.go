package catalog

// referenceValues returns the laboratory reference table shared by every
// panel, keyed by check item id.
func referenceValues() map[string]string {
	return map[string]string{
		// blood count
		"hb":          "M:13.1-17.2;F:11.0-15.2",
		"rbc":         "M:4.21-5.9;F:3.78-5.25",
		"wbc":         "3.25-9.16",
		"plt":         "150-378",
		"hct":         "M:39.6-51.5;F:34.8-46.3",
		"mcv":         "80.9-99.3",
		"mch":         "25.5-33.2",
		"mchc":        "31.0-34.9",
		"esr":         "M:2-10;F:2-15",
		"neutrophils": "41.6-74.4",
		"lymphocytes": "18.0-48.8",

		// glucose
		"ac_sugar":  "70-100",
		"pc_sugar":  "<140",
		"hba1c":     "4.0-6.0",
		"insulin":   "<28.8",
		"c_peptide": "0.78-5.19",

		// renal and urine
		"bun":         "7-25",
		"cre":         "0.6-1.3",
		"ua":          "M:4.4-7.6;F:2.3-6.6",
		"urine_ph":    "5.0-8.0",
		"urine_sp_gr": "1.003-1.035",
		"urine_pro":   "(-)",
		"urine_bld":   "(-)",
		"urine_glu":   "(-)",
		"urine_bil":   "(-)",
		"urine_uro":   "<=1.5",
		"urine_ket":   "(-)",
		"urine_nit":   "(-)",
		"urine_leu":   "(-)",
		"urine_rbc":   "0-2",
		"urine_wbc":   "0-5",
		"urine_cast":  "0-2",
		"micro_alb":   "<30",

		// liver
		"t_bil":     "0.3-1.0",
		"d_bil":     "0.03-0.18",
		"ast":       "8-31",
		"alt":       "0-41",
		"tp":        "6.4-8.9",
		"alb":       "3.5-5.7",
		"alp_liver": "34-104",
		"ggt":       "9-64",
		"ldh":       "140-271",
		"nh3":       "16-53",

		// lipids
		"tg":   "<150",
		"chol": "<200",
		"hdl":  ">40",
		"ldl":  "<130",
		"ck":   "30-223",

		// thyroid
		"tsh":     "0.17-4.05",
		"free_t4": "0.89-1.79",
		"t3":      "78.0-182.0",
		"t4":      "4.6-12.4",

		// tumour markers
		"afp":   "<20.0",
		"cea":   "<5.0",
		"ca125": "<35.0",
		"ca199": "<37.0",
		"psa":   "<4.0",

		// electrolytes
		"iron":     "51-209",
		"tibc":     "268-593",
		"ferritin": "M:21.81-274.66;F:4.63-204.0",
		"ca_blood": "2.15-2.58",
		"p":        "2.5-5",
		"mg":       "0.78-1.11",
		"na":       "136-145",
		"k":        "3.5-5.1",
		"cl":       "98-107",
		"vit_d":    "30-100",

		// biological exposure indices
		"pb_blood":   "M:<40;F:<30",
		"urine_hg":   "<35",
		"urine_ni":   "<30",
		"urine_cd":   "<5",
		"urine_25hd": "<0.4",
		"urine_ttma": "<500",
		"urine_nmf":  "<15",
		"urine_as":   "<35",
		"urine_cr":   "<25",
		"urine_mn":   "<10",
		"urine_b2mg": "<300",
		"urine_ttca": "<5",
		"urine_tca":  "<15",
		"serum_in":   "<3",
		"kl6":        "<500",
	}
}
