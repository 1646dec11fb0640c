package catalog

import "github.com/jwalitptl/shc-api/internal/model"

// Item ids with behaviour attached to them outside the reference table.
const (
	ItemFVC         = "fvc"
	ItemFEV1        = "fev1"
	ItemFEV1FVC     = "fev1_fvc"
	ItemLungPattern = "lung_pattern"
)

// Lung pattern options.
const (
	PatternNormal      = "正常"
	PatternObstructive = "阻塞性通氣障礙"
	PatternRestrictive = "限制性通氣障礙"
	PatternMixed       = "混合型通氣障礙"
	PatternOther       = "異常(其他)"
)

const (
	optNormal   = "正常"
	optAbnormal = "異常"
)

type itemBuilder struct {
	refs map[string]string
}

func (b itemBuilder) num(id, label, unit string) model.CheckItem {
	return model.CheckItem{
		ID:            id,
		Label:         label,
		Unit:          unit,
		ValueType:     model.ValueNumeric,
		Reference:     b.refs[id],
		Applicability: model.ApplyAlways,
	}
}

func (b itemBuilder) numRef(id, label, unit, ref string) model.CheckItem {
	it := b.num(id, label, unit)
	it.Reference = ref
	return it
}

func (b itemBuilder) sel(id, label, ref string, options ...string) model.CheckItem {
	return model.CheckItem{
		ID:            id,
		Label:         label,
		ValueType:     model.ValueCategorical,
		Options:       options,
		Reference:     ref,
		Applicability: model.ApplyAlways,
	}
}

// exam is a normal/abnormal physical examination finding.
func (b itemBuilder) exam(id, label string) model.CheckItem {
	return b.sel(id, label, optNormal, optNormal, optAbnormal)
}

// qual is a dipstick-style qualitative test.
func (b itemBuilder) qual(id, label string) model.CheckItem {
	return b.sel(id, label, b.refs[id], "(-)", "(+/-)", "(+)", "(++)", "(+++)")
}

func entryOnly(it model.CheckItem) model.CheckItem {
	it.Applicability = model.ApplyEntry
	return it
}

func periodicOnly(it model.CheckItem) model.CheckItem {
	it.Applicability = model.ApplyPeriodic
	return it
}

func (b itemBuilder) lung() []model.CheckItem {
	return []model.CheckItem{
		b.numRef(ItemFVC, "FVC", "% pred", ">=80"),
		b.numRef(ItemFEV1, "FEV1", "% pred", ">=80"),
		b.numRef(ItemFEV1FVC, "FEV1/FVC", "%", ">=70"),
		b.sel(ItemLungPattern, "肺功能判讀", PatternNormal,
			PatternNormal, PatternObstructive, PatternRestrictive, PatternMixed, PatternOther),
	}
}

func (b itemBuilder) bloodCount() []model.CheckItem {
	return []model.CheckItem{
		b.num("hb", "血色素 (Hb)", "g/dL"),
		b.num("rbc", "紅血球 (RBC)", "10^6/uL"),
		b.num("wbc", "白血球 (WBC)", "10^3/uL"),
		b.num("plt", "血小板 (PLT)", "10^3/uL"),
		b.num("hct", "血球比容 (Hct)", "%"),
	}
}

func (b itemBuilder) liver() []model.CheckItem {
	return []model.CheckItem{
		b.num("ast", "AST (GOT)", "U/L"),
		b.num("alt", "ALT (GPT)", "U/L"),
		b.num("ggt", "r-GT", "U/L"),
	}
}

func (b itemBuilder) renal() []model.CheckItem {
	return []model.CheckItem{
		b.num("bun", "BUN", "mg/dL"),
		b.num("cre", "肌酸酐", "mg/dL"),
	}
}

func (b itemBuilder) chestXray() model.CheckItem {
	return b.exam("chest_xray", "胸部X光")
}

func join(groups ...[]model.CheckItem) []model.CheckItem {
	var out []model.CheckItem
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func items(its ...model.CheckItem) []model.CheckItem {
	return its
}

func basicItems() []model.CheckItem {
	b := itemBuilder{refs: referenceValues()}
	return []model.CheckItem{
		b.num("height", "身高", "cm"),
		b.num("weight", "體重", "kg"),
		b.num("waist", "腰圍", "cm"),
		b.numRef("bp_sys", "收縮壓", "mmHg", "<140"),
		b.numRef("bp_dia", "舒張壓", "mmHg", "<90"),
		b.num("vision_l", "左眼視力(矯正)", ""),
		b.num("vision_r", "右眼視力(矯正)", ""),
		b.exam("color_vision", "辨色力"),
	}
}

func hazardPanels() []model.HazardPanel {
	b := itemBuilder{refs: referenceValues()}

	return []model.HazardPanel{
		{Code: "01", Name: "高溫作業", Category: model.CategoryPhysical, Items: join(
			items(b.exam("phy_heart", "心臟血管系統"), b.exam("ekg", "心電圖")),
			b.lung(),
			items(b.num("ac_sugar", "飯前血糖 (AC)", "mg/dL")),
			b.renal(),
			items(
				b.num("na", "鈉 (Na)", "mmol/L"),
				b.num("k", "鉀 (K)", "mmol/L"),
				b.num("cl", "氯 (Cl)", "mmol/L"),
				b.num("hb", "血色素 (Hb)", "g/dL"),
			),
		)},
		{Code: "02", Name: "噪音作業", Category: model.CategoryPhysical, Items: items(
			b.exam("ear_exam", "耳道理學檢查"),
			b.numRef("hearing_l_avg", "左耳平均聽閾", "dB", "<=25"),
			b.numRef("hearing_r_avg", "右耳平均聽閾", "dB", "<=25"),
			b.numRef("hearing_l_4k", "左耳 4kHz 聽閾", "dB", "<=25"),
			b.numRef("hearing_r_4k", "右耳 4kHz 聽閾", "dB", "<=25"),
			b.exam("audiogram", "聽力圖判讀"),
		)},
		{Code: "03", Name: "游離輻射作業", Category: model.CategoryPhysical, Items: join(
			b.bloodCount(),
			items(
				b.num("neutrophils", "嗜中性球", "%"),
				b.num("lymphocytes", "淋巴球", "%"),
				entryOnly(b.exam("eye_lens", "眼睛晶狀體檢查")),
				b.exam("thyroid_exam", "甲狀腺檢查"),
				b.exam("skin_exam", "皮膚檢查"),
			),
		)},
		{Code: "04", Name: "異常氣壓作業", Category: model.CategoryPhysical, Items: join(
			items(b.chestXray(), b.exam("ekg", "心電圖"), b.exam("ear_exam", "耳道理學檢查")),
			b.lung(),
			items(
				entryOnly(b.exam("bone_xray", "肩、髖、膝關節X光")),
				periodicOnly(b.exam("bone_symptom", "關節疼痛症狀")),
			),
		)},
		{Code: "05", Name: "鉛作業", Category: model.CategoryChemical, Items: join(
			items(b.num("pb_blood", "血中鉛", "ug/dL")),
			items(b.num("hb", "血色素 (Hb)", "g/dL"), b.num("hct", "血球比容 (Hct)", "%")),
			b.renal(),
			items(b.exam("neuro_exam", "神經系統檢查"), b.exam("gi_exam", "腸胃症狀")),
		)},
		{Code: "06", Name: "四烷基鉛作業", Category: model.CategoryChemical, Items: items(
			b.num("pb_blood", "血中鉛", "ug/dL"),
			b.exam("neuro_exam", "神經系統檢查"),
			b.exam("psych_exam", "精神狀態檢查"),
			b.num("hb", "血色素 (Hb)", "g/dL"),
		)},
		{Code: "07", Name: "1,1,2,2-四氯乙烷作業", Category: model.CategoryChemical, Items: join(
			b.liver(),
			items(b.exam("neuro_exam", "神經系統檢查"), b.exam("skin_exam", "皮膚檢查")),
		)},
		{Code: "08", Name: "四氯化碳作業", Category: model.CategoryChemical, Items: join(
			b.liver(),
			b.renal(),
			items(b.qual("urine_pro", "尿蛋白")),
		)},
		{Code: "09", Name: "二硫化碳作業", Category: model.CategoryChemical, Items: items(
			b.exam("neuro_exam", "神經系統檢查"),
			b.exam("eye_fundus", "眼底檢查"),
			b.exam("ekg", "心電圖"),
			b.num("chol", "總膽固醇", "mg/dL"),
			b.num("tg", "三酸甘油酯", "mg/dL"),
			periodicOnly(b.num("urine_ttca", "尿中 TTCA", "mg/g Cr")),
		)},
		{Code: "10", Name: "三氯乙烯、四氯乙烯作業", Category: model.CategoryChemical, Items: join(
			b.liver(),
			items(
				b.exam("neuro_exam", "神經系統檢查"),
				b.exam("skin_exam", "皮膚檢查"),
				periodicOnly(b.num("urine_tca", "尿中三氯乙酸", "mg/g Cr")),
			),
		)},
		{Code: "11", Name: "二甲基甲醯胺作業", Category: model.CategoryChemical, Items: join(
			b.liver(),
			items(
				b.exam("gi_exam", "腸胃症狀"),
				periodicOnly(b.num("urine_nmf", "尿中 N-甲基甲醯胺", "mg/g Cr")),
			),
		)},
		{Code: "12", Name: "正己烷作業", Category: model.CategoryChemical, Items: items(
			b.exam("neuro_exam", "神經系統檢查"),
			b.exam("nerve_conduction", "神經傳導檢查"),
			periodicOnly(b.num("urine_25hd", "尿中 2,5-己二酮", "mg/g Cr")),
		)},
		{Code: "13", Name: "聯苯胺及其鹽類等作業", Category: model.CategorySpecificSubstance, Items: items(
			b.qual("urine_bld", "尿潛血"),
			b.num("urine_rbc", "尿沉渣紅血球", "/HPF"),
			periodicOnly(b.exam("urine_cytology", "尿液細胞學檢查")),
		)},
		{Code: "14", Name: "鈹及其化合物作業", Category: model.CategorySpecificSubstance, Items: join(
			items(b.chestXray()),
			b.lung(),
			items(b.exam("skin_exam", "皮膚檢查")),
		)},
		{Code: "15", Name: "氯乙烯作業", Category: model.CategorySpecificSubstance, Items: join(
			b.liver(),
			items(
				b.num("afp", "甲型胎兒蛋白 (AFP)", "ng/mL"),
				periodicOnly(b.exam("liver_echo", "腹部超音波")),
			),
		)},
		{Code: "16", Name: "苯作業", Category: model.CategorySpecificSubstance, Items: join(
			b.bloodCount(),
			items(
				b.num("mcv", "平均血球容積 (MCV)", "fL"),
				b.num("neutrophils", "嗜中性球", "%"),
				b.num("lymphocytes", "淋巴球", "%"),
				periodicOnly(b.num("urine_ttma", "尿中 t,t-黏康酸", "ug/g Cr")),
			),
		)},
		{Code: "17", Name: "二異氰酸甲苯等作業", Category: model.CategorySpecificSubstance, Items: join(
			items(b.exam("resp_exam", "呼吸系統檢查")),
			b.lung(),
			items(b.exam("skin_exam", "皮膚檢查")),
		)},
		{Code: "18", Name: "石綿作業", Category: model.CategorySpecificSubstance, Items: join(
			items(b.chestXray(), b.exam("resp_exam", "呼吸系統檢查")),
			b.lung(),
		)},
		{Code: "19", Name: "砷及其化合物作業", Category: model.CategorySpecificSubstance, Items: join(
			items(b.exam("skin_exam", "皮膚檢查"), b.exam("neuro_exam", "神經系統檢查")),
			b.liver(),
			items(periodicOnly(b.num("urine_as", "尿中無機砷", "ug/g Cr"))),
		)},
		{Code: "20", Name: "錳及其化合物作業", Category: model.CategoryChemical, Items: items(
			b.exam("neuro_exam", "神經系統檢查"),
			b.exam("psych_exam", "精神狀態檢查"),
			periodicOnly(b.num("urine_mn", "尿中錳", "ug/g Cr")),
		)},
		{Code: "21", Name: "黃磷作業", Category: model.CategoryChemical, Items: join(
			items(b.exam("oral_exam", "口腔及牙齒檢查"), entryOnly(b.exam("jaw_xray", "下顎骨X光"))),
			b.liver(),
			items(b.qual("urine_pro", "尿蛋白")),
		)},
		{Code: "22", Name: "聯吡啶或巴拉刈作業", Category: model.CategoryChemical, Items: items(
			b.exam("skin_exam", "皮膚檢查"),
			b.exam("nail_exam", "指甲檢查"),
			b.exam("eye_exam", "眼睛檢查"),
			b.chestXray(),
		)},
		{Code: "23", Name: "粉塵作業", Category: model.CategoryDust, Items: join(
			items(b.chestXray(), b.exam("resp_exam", "呼吸系統檢查")),
			b.lung(),
		)},
		{Code: "24", Name: "鉻酸及其鹽類作業", Category: model.CategorySpecificSubstance, Items: items(
			b.exam("nasal_exam", "鼻腔檢查"),
			b.exam("skin_exam", "皮膚檢查"),
			b.chestXray(),
			periodicOnly(b.num("urine_cr", "尿中鉻", "ug/g Cr")),
		)},
		{Code: "25", Name: "鎘及其化合物作業", Category: model.CategorySpecificSubstance, Items: join(
			items(b.qual("urine_pro", "尿蛋白")),
			b.renal(),
			b.lung(),
			items(
				periodicOnly(b.num("urine_cd", "尿中鎘", "ug/g Cr")),
				periodicOnly(b.num("urine_b2mg", "尿中 β2-微球蛋白", "ug/g Cr")),
			),
		)},
		{Code: "26", Name: "汞及其無機化合物作業", Category: model.CategoryChemical, Items: items(
			b.exam("neuro_exam", "神經系統檢查"),
			b.exam("oral_exam", "口腔及牙齒檢查"),
			b.qual("urine_pro", "尿蛋白"),
			periodicOnly(b.num("urine_hg", "尿中汞", "ug/g Cr")),
		)},
		{Code: "27", Name: "鎳及其化合物作業", Category: model.CategorySpecificSubstance, Items: items(
			b.exam("skin_exam", "皮膚檢查"),
			b.exam("nasal_exam", "鼻腔檢查"),
			b.chestXray(),
			periodicOnly(b.num("urine_ni", "尿中鎳", "ug/g Cr")),
		)},
		{Code: "28", Name: "甲醛作業", Category: model.CategorySpecificSubstance, Items: join(
			items(b.exam("skin_exam", "皮膚檢查"), b.exam("eye_exam", "眼睛檢查")),
			b.lung(),
		)},
		{Code: "29", Name: "1,3-丁二烯作業", Category: model.CategorySpecificSubstance, Items: join(
			b.bloodCount(),
			b.liver(),
		)},
		{Code: "30", Name: "銦及其化合物作業", Category: model.CategorySpecificSubstance, Items: join(
			items(b.chestXray()),
			b.lung(),
			items(
				b.num("serum_in", "血清銦", "ug/L"),
				b.num("kl6", "KL-6", "U/mL"),
			),
		)},
		{Code: "31", Name: "溴丙烷作業", Category: model.CategoryChemical, Items: join(
			items(b.exam("neuro_exam", "神經系統檢查")),
			b.bloodCount(),
		)},
		{Code: "32", Name: "重體力勞動作業", Category: model.CategoryOther, Items: items(
			b.exam("phy_heart", "心臟血管系統"),
			b.exam("ekg", "心電圖"),
			b.exam("msk_exam", "肌肉骨骼檢查"),
			b.num("ac_sugar", "飯前血糖 (AC)", "mg/dL"),
			b.num("chol", "總膽固醇", "mg/dL"),
		)},
	}
}

func gradeDefinitions() []model.GradeDefinition {
	return []model.GradeDefinition{
		{
			Grade:       1,
			Label:       "第一級管理",
			Description: "全部項目正常，或部分項目異常，而經醫師綜合判定為無異常者。",
			Actions:     []string{"維持現行作業", "依規定期程實施定期特殊健康檢查"},
			Color:       "#16a34a",
		},
		{
			Grade:       2,
			Label:       "第二級管理",
			Description: "部分或全部項目異常，經醫師綜合判定為異常，而與工作無關者。",
			Actions:     []string{"提供健康指導", "建議至相關專科門診追蹤", "下次檢查時複查異常項目"},
			Color:       "#ca8a04",
		},
		{
			Grade:       3,
			Label:       "第三級管理",
			Description: "部分或全部項目異常，經醫師綜合判定為異常，而無法確定此異常與工作之相關性，應進一步請職業醫學科專科醫師評估者。",
			Actions:     []string{"轉介職業醫學科專科醫師評估", "實施作業現場訪視", "必要時縮短檢查期程"},
			Color:       "#ea580c",
		},
		{
			Grade:       4,
			Label:       "第四級管理",
			Description: "部分或全部項目異常，經醫師綜合判定為異常，且與工作有關者。",
			Actions:     []string{"採取危害控制及相關管理措施", "考量調整或縮短工作時間、變更作業", "依規定通報主管機關"},
			Color:       "#dc2626",
		},
	}
}
