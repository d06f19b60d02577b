package models

// AdSettings holds the ad code snippets injected into every page.
// There is exactly one logical instance.
type AdSettings struct {
	PopunderCode     string `json:"popunder_code" bson:"popunder_code"`
	SocialBarCode    string `json:"social_bar_code" bson:"social_bar_code"`
	BannerAdCode     string `json:"banner_ad_code" bson:"banner_ad_code"`
	NativeBannerCode string `json:"native_banner_code" bson:"native_banner_code"`
}
