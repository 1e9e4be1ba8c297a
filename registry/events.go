package registry

import "time"

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

var defaultCountries = []CountryProfile{
	{Code: "SD", Name: "Sudan", Currency: "SDG"},
	{Code: "AF", Name: "Afghanistan", Currency: "AFN"},
	{Code: "VE", Name: "Venezuela", Currency: "VES"},
	{Code: "NG", Name: "Nigeria", Currency: "NGN"},
	{Code: "ZW", Name: "Zimbabwe", Currency: "ZWL"},
	{Code: "AR", Name: "Argentina", Currency: "ARS"},
}

// defaultEvents is the curated crisis timeline for the target countries.
// Severity labels: severe > high > moderate.
var defaultEvents = []CrisisEvent{
	// Sudan
	{
		CountryCode: "SD", Date: day(2019, time.April, 11),
		Category: CategoryPolitical, Severity: "high",
		Title:       "Omar al-Bashir Overthrown",
		Description: "30-year dictator overthrown by military, economic sanctions remain",
	},
	{
		CountryCode: "SD", Date: day(2019, time.June, 3),
		Category: CategoryPolitical, Severity: "severe",
		Title:       "Khartoum Massacre",
		Description: "Military attacks protesters, internet cut, banking disrupted",
	},
	{
		CountryCode: "SD", Date: day(2021, time.October, 25),
		Category: CategoryPolitical, Severity: "severe",
		Title:       "Military Coup",
		Description: "Military dissolves civilian government, banks closed, internet cut",
	},
	{
		CountryCode: "SD", Date: day(2023, time.April, 15),
		Category: CategoryPolitical, Severity: "severe",
		Title:       "RSF-SAF Conflict Begins",
		Description: "Rapid Support Forces clash with army, banking system collapses",
	},

	// Afghanistan
	{
		CountryCode: "AF", Date: day(2021, time.August, 15),
		Category: CategoryPolitical, Severity: "severe",
		Title:       "Taliban Takeover",
		Description: "Taliban captures Kabul, government collapses, mass exodus",
	},
	{
		CountryCode: "AF", Date: day(2021, time.August, 17),
		Category: CategorySanctions, Severity: "severe",
		Title:       "Assets Frozen",
		Description: "US freezes $9.5B in Afghan central bank assets",
	},
	{
		CountryCode: "AF", Date: day(2021, time.December, 22),
		Category: CategoryEconomic, Severity: "severe",
		Title:       "Banking System Collapse",
		Description: "Banks limit withdrawals, cash shortage, humanitarian crisis",
	},

	// Venezuela
	{
		CountryCode: "VE", Date: day(2019, time.January, 23),
		Category: CategoryPolitical, Severity: "high",
		Title:       "Guaido Declares Presidency",
		Description: "Opposition leader declares himself president, international recognition",
	},
	{
		CountryCode: "VE", Date: day(2019, time.March, 7),
		Category: CategoryEconomic, Severity: "high",
		Title:       "Nationwide Blackout",
		Description: "Massive power outage affects 70% of country for days",
	},
	{
		CountryCode: "VE", Date: day(2020, time.March, 26),
		Category: CategorySanctions, Severity: "high",
		Title:       "US Sanctions Intensify",
		Description: "Enhanced sanctions target Venezuelan oil industry",
	},
	{
		CountryCode: "VE", Date: day(2021, time.October, 1),
		Category: CategoryEconomic, Severity: "moderate",
		Title:       "Bolivar Redenomination",
		Description: "Venezuela removes 6 zeros from currency due to inflation",
	},

	// Nigeria
	{
		CountryCode: "NG", Date: day(2021, time.February, 5),
		Category: CategoryOther, Severity: "severe",
		Title:       "Central Bank Crypto Ban",
		Description: "CBN prohibits banks from facilitating crypto transactions",
	},
	{
		CountryCode: "NG", Date: day(2021, time.October, 20),
		Category: CategoryPolitical, Severity: "moderate",
		Title:       "EndSARS Anniversary",
		Description: "Protests anniversary, youth turn to crypto for financial freedom",
	},
	{
		CountryCode: "NG", Date: day(2023, time.February, 1),
		Category: CategoryEconomic, Severity: "high",
		Title:       "Naira Scarcity Crisis",
		Description: "Cash shortages due to new banknote rollout, people turn to digital alternatives",
	},

	// Zimbabwe
	{
		CountryCode: "ZW", Date: day(2019, time.June, 1),
		Category: CategoryEconomic, Severity: "high",
		Title:       "USD Usage Banned",
		Description: "Government bans USD, enforces RTGS dollar usage",
	},
	{
		CountryCode: "ZW", Date: day(2020, time.March, 1),
		Category: CategoryEconomic, Severity: "severe",
		Title:       "Inflation Reaches 800%",
		Description: "Hyperinflation returns, currency rapidly loses value",
	},
	{
		CountryCode: "ZW", Date: day(2020, time.March, 30),
		Category: CategoryOther, Severity: "moderate",
		Title:       "COVID-19 Lockdown",
		Description: "Strict lockdown measures, informal economy disrupted",
	},

	// Argentina
	{
		CountryCode: "AR", Date: day(2019, time.August, 12),
		Category: CategoryEconomic, Severity: "severe",
		Title:       "Peso Crashes 30%",
		Description: "Primary election results trigger massive peso devaluation",
	},
	{
		CountryCode: "AR", Date: day(2019, time.October, 27),
		Category: CategoryPolitical, Severity: "high",
		Title:       "Presidential Election",
		Description: "Alberto Fernandez wins, markets fear return to populist policies",
	},
	{
		CountryCode: "AR", Date: day(2020, time.September, 1),
		Category: CategoryEconomic, Severity: "high",
		Title:       "Stricter Capital Controls",
		Description: "Government tightens dollar purchase restrictions",
	},
	{
		CountryCode: "AR", Date: day(2022, time.July, 2),
		Category: CategoryPolitical, Severity: "moderate",
		Title:       "Economy Minister Resigns",
		Description: "Martin Guzman resigns amid economic turmoil",
	},
}
