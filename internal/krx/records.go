package krx

import (
	"github.com/tidwall/gjson"

	"krx-supply-oscillator/internal/domain"
)

// Each report kind has one row decoder, keeping its field names and its
// zero-vs-absent policy in one place. Rows that fail a decoder's required
// fields are skipped, not errors: partial listing rows are routine.

type rowDecoder[T any] func(row gjson.Result) (T, bool)

// decodeReport runs a row decoder over every record in a report body.
func decodeReport[T any](body []byte, decode rowDecoder[T]) ([]T, error) {
	rows, err := parseRows(body)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		rec, ok := decode(row)
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// decodeTickerRow handles the full-market listing (MDCSTAT01901).
// ISU_SRT_CD is required; a row without it carries no usable identifier.
func decodeTickerRow(row gjson.Result) (domain.TickerRecord, bool) {
	ticker := str(row, "ISU_SRT_CD")
	if ticker == "" {
		return domain.TickerRecord{}, false
	}
	return domain.TickerRecord{
		Ticker: ticker,
		Name:   str(row, "ISU_ABBRV"),
		Market: str(row, "MKT_TP_NM"),
		ISIN:   str(row, "ISU_CD"),
	}, true
}

// decodeMarketCapRow handles the all-market price report (MDCSTAT01501).
// Numerics are non-nullable here: a halted issue reports "-" prices which
// the consumer treats as zero.
func decodeMarketCapRow(row gjson.Result) (domain.MarketCapRecord, bool) {
	ticker := str(row, "ISU_SRT_CD")
	if ticker == "" {
		return domain.MarketCapRecord{}, false
	}
	return domain.MarketCapRecord{
		Ticker:            ticker,
		Name:              str(row, "ISU_ABBRV"),
		Close:             intOrZero(row, "TDD_CLSPRC"),
		ChangeRate:        floatOrZero(row, "FLUC_RT"),
		MarketCap:         intOrZero(row, "MKTCAP"),
		SharesOutstanding: intOrZero(row, "LIST_SHRS"),
	}, true
}

// decodeOhlcvRow handles per-ticker OHLCV history (MDCSTAT01701 and the ETF
// variant MDCSTAT04501). TRD_DD arrives as yyyy/MM/dd.
func decodeOhlcvRow(row gjson.Result) (domain.OhlcvDay, bool) {
	rawDate := str(row, "TRD_DD")
	if rawDate == "" {
		return domain.OhlcvDay{}, false
	}
	return domain.OhlcvDay{
		Date:         NormalizeDate(rawDate),
		Open:         intOrZero(row, "TDD_OPNPRC"),
		High:         intOrZero(row, "TDD_HGPRC"),
		Low:          intOrZero(row, "TDD_LWPRC"),
		Close:        intOrZero(row, "TDD_CLSPRC"),
		Volume:       intOrZero(row, "ACC_TRDVOL"),
		TradingValue: intOrZero(row, "ACC_TRDVAL"),
		ChangeRate:   floatOrZero(row, "FLUC_RT"),
	}, true
}

// decodeInvestorMarketRow handles the market-wide investor daily report
// (MDCSTAT02203), where TRDVAL8 is the institutional total and TRDVAL11 the
// foreign total. Investor columns are nullable upstream; a missing class
// means no activity, so the absent marker maps to zero explicitly.
func decodeInvestorMarketRow(row gjson.Result) (domain.InvestorTrading, bool) {
	rawDate := str(row, "TRD_DD")
	if rawDate == "" {
		return domain.InvestorTrading{}, false
	}
	rec := domain.InvestorTrading{Date: NormalizeDate(rawDate)}
	rec.FinancialInv, _ = optInt(row, "TRDVAL1")
	rec.Insurance, _ = optInt(row, "TRDVAL2")
	rec.Trust, _ = optInt(row, "TRDVAL3")
	rec.PrivateEquity, _ = optInt(row, "TRDVAL4")
	rec.Bank, _ = optInt(row, "TRDVAL5")
	rec.OtherFinance, _ = optInt(row, "TRDVAL6")
	rec.PensionFund, _ = optInt(row, "TRDVAL7")
	rec.InstTotal, _ = optInt(row, "TRDVAL8")
	rec.OtherCorp, _ = optInt(row, "TRDVAL9")
	rec.Individual, _ = optInt(row, "TRDVAL10")
	rec.Foreign, _ = optInt(row, "TRDVAL11")
	rec.Total, _ = optInt(row, "TRDVAL_TOT")
	return rec, true
}

// decodeInvestorTickerRow handles the per-ticker investor daily report
// (MDCSTAT02303). Same TRDVAL1..11 keys, different layout: TRDVAL8 is other
// corporations (not the institutional total), TRDVAL9 individuals, TRDVAL10
// foreign, TRDVAL11 other foreign. The institutional total is the sum of
// TRDVAL1..7 and the foreign total is TRDVAL10+TRDVAL11.
func decodeInvestorTickerRow(row gjson.Result) (domain.InvestorTrading, bool) {
	rawDate := str(row, "TRD_DD")
	if rawDate == "" {
		return domain.InvestorTrading{}, false
	}
	rec := domain.InvestorTrading{Date: NormalizeDate(rawDate)}
	rec.FinancialInv, _ = optInt(row, "TRDVAL1")
	rec.Insurance, _ = optInt(row, "TRDVAL2")
	rec.Trust, _ = optInt(row, "TRDVAL3")
	rec.PrivateEquity, _ = optInt(row, "TRDVAL4")
	rec.Bank, _ = optInt(row, "TRDVAL5")
	rec.OtherFinance, _ = optInt(row, "TRDVAL6")
	rec.PensionFund, _ = optInt(row, "TRDVAL7")
	rec.OtherCorp, _ = optInt(row, "TRDVAL8")
	rec.Individual, _ = optInt(row, "TRDVAL9")
	foreignMain, _ := optInt(row, "TRDVAL10")
	foreignOther, _ := optInt(row, "TRDVAL11")
	rec.Total, _ = optInt(row, "TRDVAL_TOT")

	rec.InstTotal = rec.FinancialInv + rec.Insurance + rec.Trust +
		rec.PrivateEquity + rec.Bank + rec.OtherFinance + rec.PensionFund
	rec.Foreign = foreignMain + foreignOther
	return rec, true
}

// decodeEtfRow handles the ETF listing report (MDCSTAT04601).
func decodeEtfRow(row gjson.Result) (domain.EtfRecord, bool) {
	ticker := str(row, "ISU_SRT_CD")
	if ticker == "" {
		return domain.EtfRecord{}, false
	}
	return domain.EtfRecord{
		Ticker: ticker,
		Name:   str(row, "ISU_ABBRV"),
		ISIN:   str(row, "ISU_CD"),
		Index:  str(row, "IDX_IND_NM"),
	}, true
}
