package strategy

// Defaults is the hard-coded strategy set loaded at process start. All
// ship disabled; the dashboard or the strategies file turns them on.
// Instrument tokens are Upstox NSE equity identifiers (exchange|ISIN).
func Defaults() []StrategyConfig {
	return []StrategyConfig{
		{
			ID:              "ema-crossover-reliance",
			Name:            "EMA Crossover RELIANCE",
			Symbol:          "RELIANCE",
			InstrumentToken: "NSE_EQ|INE002A01018",
			Type:            TypeEMACrossover,
			Params: Params{
				FastPeriod: 9,
				SlowPeriod: 21,
				Quantity:   1,
				StopLoss:   1.0,
				TakeProfit: 2.0,
			},
		},
		{
			ID:              "rsi-oversold-tcs",
			Name:            "RSI Reversal TCS",
			Symbol:          "TCS",
			InstrumentToken: "NSE_EQ|INE467B01029",
			Type:            TypeRSIOversold,
			Params: Params{
				RSIPeriod:  14,
				Oversold:   30,
				Overbought: 70,
				Quantity:   1,
				StopLoss:   1.0,
				TakeProfit: 2.0,
			},
		},
		{
			ID:              "sma-trend-infy",
			Name:            "SMA Trend INFY",
			Symbol:          "INFY",
			InstrumentToken: "NSE_EQ|INE009A01021",
			Type:            TypeSMATrend,
			Params: Params{
				ShortPeriod: 10,
				LongPeriod:  20,
				Threshold:   0.5,
				Quantity:    2,
				StopLoss:    1.5,
				TakeProfit:  3.0,
			},
		},
		{
			ID:              "bollinger-hdfcbank",
			Name:            "Bollinger Reversion HDFCBANK",
			Symbol:          "HDFCBANK",
			InstrumentToken: "NSE_EQ|INE040A01034",
			Type:            TypeBollinger,
			Params: Params{
				BBPeriod:      20,
				BBStdDev:      2,
				MeanReversion: true,
				Quantity:      1,
				StopLoss:      1.0,
				TakeProfit:    2.0,
			},
		},
		{
			ID:              "vote-sbin",
			Name:            "Indicator Vote SBIN",
			Symbol:          "SBIN",
			InstrumentToken: "NSE_EQ|INE062A01020",
			Type:            TypeIndicatorVote,
			Params: Params{
				FastPeriod:   9,
				SlowPeriod:   21,
				RSIPeriod:    14,
				Oversold:     30,
				Overbought:   70,
				BBPeriod:     20,
				BBStdDev:     2,
				VolumePeriod: 20,
				VolumeFactor: 1.5,
				MACDFast:     12,
				MACDSlow:     26,
				Quantity:     5,
				StopLoss:     1.0,
				TakeProfit:   2.0,
			},
		},
	}
}
