package domain

// Path is a route on the gateway's surface. The route guard in
// internal/access is the sole arbiter of reachability among these.
type Path string

const (
	PathLanding         Path = "/"
	PathBuyerDashboard  Path = "/dashboard"
	PathSellerDashboard Path = "/seller/dashboard"
	PathAdmin           Path = "/admin"
	PathAdminLogin      Path = "/admin/login"
)

func (p Path) String() string { return string(p) }
